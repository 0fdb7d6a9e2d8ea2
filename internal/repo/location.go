package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/award28/toolshed/internal/model"
)

// LocationRepository — контракт доступа к локациям.
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id int64) (*model.Location, error)
	ListAll(ctx context.Context) ([]model.Location, error)

	// ListByParent возвращает прямых потомков; parentID == nil — корневые локации.
	ListByParent(ctx context.Context, parentID *int64) ([]model.Location, error)

	// Update применяет частичное обновление по карте колонок
	// и возвращает свежую строку.
	Update(ctx context.Context, id int64, updates map[string]any) (*model.Location, error)

	// Delete удаляет локацию, предварительно очистив ссылки на неё:
	// потомки становятся корневыми, инструменты теряют локацию.
	// Каскадного удаления нет.
	Delete(ctx context.Context, id int64) error

	// CountToolsPerLocation возвращает число инструментов в каждой локации
	// (только прямое размещение, без потомков).
	CountToolsPerLocation(ctx context.Context) (map[int64]int64, error)
}

type locationRepo struct {
	db *DB
}

// NewLocationRepository создаёт реализацию репозитория локаций.
func NewLocationRepository(db *DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return r.db.gorm.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	if err := r.db.gorm.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) ListAll(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.gorm.WithContext(ctx).Order("name").Find(&locs).Error
	return locs, err
}

func (r *locationRepo) ListByParent(ctx context.Context, parentID *int64) ([]model.Location, error) {
	q := r.db.gorm.WithContext(ctx).Order("name")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var locs []model.Location
	err := q.Find(&locs).Error
	return locs, err
}

func (r *locationRepo) Update(ctx context.Context, id int64, updates map[string]any) (*model.Location, error) {
	res := r.db.gorm.WithContext(ctx).Model(&model.Location{}).
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

func (r *locationRepo) Delete(ctx context.Context, id int64) error {
	return r.db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// явная очистка ссылок вместо ON DELETE SET NULL:
		// одинаковое поведение на обоих движках независимо от настроек FK
		if err := tx.Model(&model.Location{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Tool{}).
			Where("location_id = ?", id).
			Update("location_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Location{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *locationRepo) CountToolsPerLocation(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		LocationID int64
		Count      int64
	}
	err := r.db.gorm.WithContext(ctx).Model(&model.Tool{}).
		Select("location_id, count(*) AS count").
		Where("location_id IS NOT NULL").
		Group("location_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.LocationID] = row.Count
	}
	return counts, nil
}
