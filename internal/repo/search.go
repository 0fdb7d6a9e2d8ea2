package repo

import (
	"strings"

	"gorm.io/gorm"
)

// searcher — движко-специфичная часть полнотекстового поиска по инструментам.
// Обе реализации поддерживают индекс средствами самого движка, поэтому
// обновление индекса фиксируется в той же транзакции, что и строка tools:
// SQLite — триггерами на FTS5-таблице, PostgreSQL — generated-колонкой.
type searcher interface {
	migrate(db *gorm.DB) error
	search(db *gorm.DB, query string) ([]int64, error)
}

// sqliteSearch — внешне-контентная FTS5-таблица tools_fts, синхронизируемая
// триггерами AFTER INSERT/DELETE/UPDATE на tools.
type sqliteSearch struct{}

func (sqliteSearch) migrate(db *gorm.DB) error {
	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS tools_fts USING fts5(
			label,
			description,
			notes,
			content='tools',
			content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS tools_ai AFTER INSERT ON tools BEGIN
			INSERT INTO tools_fts(rowid, label, description, notes)
			VALUES (new.id, new.label, new.description, new.notes);
		END`,
		`CREATE TRIGGER IF NOT EXISTS tools_ad AFTER DELETE ON tools BEGIN
			INSERT INTO tools_fts(tools_fts, rowid, label, description, notes)
			VALUES ('delete', old.id, old.label, old.description, old.notes);
		END`,
		// обновление = удаление старой проекции + вставка новой,
		// иначе индекс останется с устаревшими термами
		`CREATE TRIGGER IF NOT EXISTS tools_au AFTER UPDATE ON tools BEGIN
			INSERT INTO tools_fts(tools_fts, rowid, label, description, notes)
			VALUES ('delete', old.id, old.label, old.description, old.notes);
			INSERT INTO tools_fts(rowid, label, description, notes)
			VALUES (new.id, new.label, new.description, new.notes);
		END`,
		`CREATE INDEX IF NOT EXISTS idx_tools_location ON tools(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_locations_parent ON locations(parent_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (sqliteSearch) search(db *gorm.DB, query string) ([]int64, error) {
	var ids []int64
	err := db.Raw(
		`SELECT rowid FROM tools_fts WHERE tools_fts MATCH ? ORDER BY rank`,
		ftsQuery(query),
	).Scan(&ids).Error
	return ids, err
}

// ftsQuery экранирует пользовательский ввод для FTS5: каждый терм
// оборачивается в кавычки, чтобы операторы синтаксиса MATCH
// не ломали запрос.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// postgresSearch — хранимая generated-колонка search_vector с GIN-индексом;
// пересчитывается движком при каждой записи строки.
type postgresSearch struct{}

func (postgresSearch) migrate(db *gorm.DB) error {
	stmts := []string{
		`ALTER TABLE tools ADD COLUMN IF NOT EXISTS search_vector tsvector
			GENERATED ALWAYS AS (
				to_tsvector('simple',
					coalesce(label, '') || ' ' ||
					coalesce(description, '') || ' ' ||
					coalesce(notes, ''))
			) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_tools_search ON tools USING GIN (search_vector)`,
		`CREATE INDEX IF NOT EXISTS idx_tools_location ON tools(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_locations_parent ON locations(parent_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (postgresSearch) search(db *gorm.DB, query string) ([]int64, error) {
	var ids []int64
	err := db.Raw(
		`SELECT id FROM tools
		 WHERE search_vector @@ plainto_tsquery('simple', ?)
		 ORDER BY ts_rank(search_vector, plainto_tsquery('simple', ?)) DESC`,
		query, query,
	).Scan(&ids).Error
	return ids, err
}
