package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingModel mirrors the 'food_listings' table.
type ListingModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	PostedBy    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Category    string     `gorm:"type:varchar(50);not null;index"`
	Quantity    int        `gorm:"not null;default:1"`
	IsFree      bool       `gorm:"not null;default:false"`
	Price       float64    `gorm:"type:decimal(10,2);not null;default:0"`
	Status      string     `gorm:"type:varchar(20);not null;default:'available';index"`
	Latitude    *float64   `gorm:"type:decimal(10,8)"`
	Longitude   *float64   `gorm:"type:decimal(11,8)"`
	ExpiryDate  *time.Time `gorm:"index"`
	ExpiredAt   *time.Time
	Views       int `gorm:"not null;default:0"`
	MarkerViews int `gorm:"not null;default:0"`
	ClickViews  int `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ListingModel) TableName() string {
	return "food_listings"
}
