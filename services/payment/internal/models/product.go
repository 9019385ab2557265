package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/kicks_premium/pkg/db"
)

// Product is the slice of the catalog's products table that checkout and
// fulfillment read and decrement. The catalog service owns the table and
// its migrations.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Price    int64     `gorm:"not null"`
	Stock    int       `gorm:"not null"`
	IsActive bool      `gorm:"not null"`
	Version  int       `gorm:"not null"`

	Brand          string
	SizesAvailable db.SizeStock
	Images         db.StringList
	UpdatedAt      time.Time
}

func (Product) TableName() string { return "products" }

func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
