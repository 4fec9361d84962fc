package models

import (
	"gorm.io/gorm"
)

// ServiceItem is the local read model of the service catalog.
type ServiceItem struct {
	gorm.Model
	Name     string  `json:"name" gorm:"size:200;not null"`
	Category string  `json:"category" gorm:"size:100;not null"`
	Price    float64 `json:"price" gorm:"type:decimal(12,2);not null"`
	Active   bool    `json:"active" gorm:"not null;default:true"`
}

func (ServiceItem) TableName() string {
	return "services"
}
