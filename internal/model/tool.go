package model

import "time"

// Tool — инструмент в инвентаре.
// ImagePath — опциональная ссылка на файл в хранилище загрузок
// (вида /uploads/<имя>); владеет ссылкой строка, байтами — хранилище.
type Tool struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	Label       string  `gorm:"not null" json:"label"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	ImagePath   *string `json:"imagePath"`

	LocationID *int64    `gorm:"index" json:"locationId"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"location,omitempty"`

	// Инвариант: BorrowedAt/BorrowedBy заполнены только при IsBorrowed=true.
	IsBorrowed bool       `gorm:"not null;default:false" json:"isBorrowed"`
	BorrowedBy *string    `json:"borrowedBy"`
	BorrowedAt *time.Time `json:"borrowedAt"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
