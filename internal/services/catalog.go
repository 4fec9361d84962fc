package services

import (
	"context"
	"errors"

	"github.com/chachabrian/homefix-backend/internal/models"
	"gorm.io/gorm"
)

// Catalog reads active services from the services table.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) GetService(ctx context.Context, id uint) (*models.ServiceItem, error) {
	var item models.ServiceItem
	err := c.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
