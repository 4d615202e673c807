package models

import "time"

// Chart is a link to an external chart snapshot, shared the same way notes are.
type Chart struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Asset       *string   `json:"asset"`
	Timeframe   *string   `json:"timeframe"`
	ChartURL    string    `gorm:"not null" json:"chart_url"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
