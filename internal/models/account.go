package models

import "time"

// Account is a broker account trades are booked against.
type Account struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Broker          *string   `json:"broker"`
	Currency        string    `gorm:"default:USD" json:"currency"`
	StartingBalance *float64  `json:"starting_balance"`
	IsProp          bool      `gorm:"default:false" json:"is_prop"`
	Archived        bool      `gorm:"default:false" json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
}
