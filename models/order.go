package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a placed food order. UserID and DelivererID are weak references:
// no foreign key constraints are created for them.
type Order struct {
	ID           string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Store        string    `json:"store"`
	Food         string    `json:"food"`
	UserLocation string    `json:"userLocation"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	OrderStatus  string    `json:"orderStatus"`
	FoodStatus   string    `json:"foodStatus"`
	DelivererID  *string   `json:"delivererID" gorm:"type:varchar(36);index"`
	UserID       *string   `json:"userID" gorm:"type:varchar(36);index"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
