// Package hierarchy разворачивает лес локаций в замкнутые множества потомков.
package hierarchy

import "github.com/award28/toolshed/internal/model"

// Descendants возвращает множество: сама локация id плюс все её
// транзитивные потомки. Обход идёт в ширину по карте parent -> children,
// построенной за один проход по срезу; множество visited гарантирует
// завершение даже если данные повреждены до цикла.
func Descendants(all []model.Location, id int64) map[int64]struct{} {
	children := make(map[int64][]int64, len(all))
	for _, loc := range all {
		if loc.ParentID != nil {
			children[*loc.ParentID] = append(children[*loc.ParentID], loc.ID)
		}
	}

	visited := map[int64]struct{}{id: {}}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return visited
}

// DescendantIDs — то же множество в виде среза для SQL-фильтра IN.
func DescendantIDs(all []model.Location, id int64) []int64 {
	set := Descendants(all, id)
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
