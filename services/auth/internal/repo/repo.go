package repo

import (
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/services/auth/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(&models.User{}, &models.RefreshToken{})
}
