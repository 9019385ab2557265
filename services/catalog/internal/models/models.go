package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/db"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null"             json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product prices are integer minor units. Version is bumped on every write
// so stock decrements can detect concurrent changes. IsActive and Version
// carry no column default because gorm skips zero values that have one.
type Product struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"   json:"id"`
	Name             string        `gorm:"not null"               json:"name"`
	Slug             string        `gorm:"uniqueIndex;not null"   json:"slug"`
	Description      string        `json:"description"`
	Price            int64         `gorm:"not null"               json:"price"`
	ComparePrice     *int64        `json:"compare_price"`
	CostPrice        *int64        `json:"cost_price,omitempty"`
	Stock            int           `gorm:"not null"               json:"stock"`
	SizesAvailable   db.SizeStock  `json:"sizes_available"`
	CategoryID       uuid.UUID     `gorm:"type:uuid;index"        json:"category_id"`
	Category         *Category     `gorm:"foreignKey:CategoryID"  json:"category,omitempty"`
	Images           db.StringList `json:"images"`
	SKU              *string       `gorm:"column:sku;uniqueIndex" json:"sku"`
	Brand            string        `json:"brand"`
	Material         string        `json:"material"`
	Color            string        `json:"color"`
	IsFeatured       bool          `gorm:"not null"               json:"is_featured"`
	IsActive         bool          `gorm:"not null;index"         json:"is_active"`
	IsLimitedEdition bool          `gorm:"not null"               json:"is_limited_edition"`
	Version          int           `gorm:"not null"               json:"version"`
	CreatedAt        time.Time     `gorm:"index"                  json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
