package repo

import (
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// Migrate creates the orders table. Products belong to the catalog service.
func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(&models.Order{})
}
