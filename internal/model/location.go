package model

import "time"

// Location — узел иерархии хранения (полка, комната, здание).
// ParentID == nil означает корневую локацию. Связь родитель-потомок
// обязана оставаться ациклической; прямое самородительство отклоняется
// на уровне сервиса.
type Location struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description"`
	ParentID    *int64  `gorm:"index" json:"parentId"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
