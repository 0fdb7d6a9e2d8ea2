package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/award28/toolshed/internal/model"
)

// ToolFilter — конъюнктивный фильтр списка инструментов.
// Нулевое значение поля означает отсутствие соответствующего фильтра.
type ToolFilter struct {
	// LocationIDs — замкнутое множество локаций (сама локация плюс потомки)
	LocationIDs []int64
	// Borrowed — фильтр по статусу выдачи
	Borrowed *bool
	// MatchingIDs — результат полнотекстового поиска; nil = поиска не было
	MatchingIDs []int64
}

// ToolRepository — контракт доступа к инструментам.
type ToolRepository interface {
	Create(ctx context.Context, tool *model.Tool) error

	// GetByID возвращает инструмент вместе с его локацией.
	GetByID(ctx context.Context, id int64) (*model.Tool, error)

	// ListFiltered возвращает инструменты с локациями, пропущенные
	// через все заданные фильтры.
	ListFiltered(ctx context.Context, f ToolFilter) ([]model.Tool, error)

	// Update применяет частичное обновление по карте колонок
	// и возвращает свежую строку с локацией.
	Update(ctx context.Context, id int64, updates map[string]any) (*model.Tool, error)

	Delete(ctx context.Context, id int64) error

	// Search возвращает id инструментов, ранжированные по релевантности.
	// Пустой или пробельный запрос даёт пустой результат, а не «все строки».
	Search(ctx context.Context, query string) ([]int64, error)
}

type toolRepo struct {
	db *DB
}

// NewToolRepository создаёт реализацию репозитория инструментов.
func NewToolRepository(db *DB) ToolRepository {
	return &toolRepo{db: db}
}

func (r *toolRepo) Create(ctx context.Context, tool *model.Tool) error {
	return r.db.gorm.WithContext(ctx).Create(tool).Error
}

func (r *toolRepo) GetByID(ctx context.Context, id int64) (*model.Tool, error) {
	var tool model.Tool
	err := r.db.gorm.WithContext(ctx).Preload("Location").First(&tool, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tool, nil
}

func (r *toolRepo) ListFiltered(ctx context.Context, f ToolFilter) ([]model.Tool, error) {
	// непустой поиск без совпадений отсекается ещё в сервисе,
	// но пустое множество id не должно превращаться в IN ()
	if f.MatchingIDs != nil && len(f.MatchingIDs) == 0 {
		return []model.Tool{}, nil
	}

	q := r.db.gorm.WithContext(ctx).Model(&model.Tool{}).
		Preload("Location").
		Order("created_at DESC")
	if len(f.LocationIDs) > 0 {
		q = q.Where("location_id IN ?", f.LocationIDs)
	}
	if f.Borrowed != nil {
		q = q.Where("is_borrowed = ?", *f.Borrowed)
	}
	if f.MatchingIDs != nil {
		q = q.Where("id IN ?", f.MatchingIDs)
	}

	var tools []model.Tool
	if err := q.Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

func (r *toolRepo) Update(ctx context.Context, id int64, updates map[string]any) (*model.Tool, error) {
	res := r.db.gorm.WithContext(ctx).Model(&model.Tool{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *toolRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.gorm.WithContext(ctx).Delete(&model.Tool{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *toolRepo) Search(ctx context.Context, query string) ([]int64, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	return r.db.searcher.search(r.db.gorm.WithContext(ctx), q)
}
