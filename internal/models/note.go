package models

import "time"

// Note is a freeform annotation shared between trades and analyses through
// junction tables; the row survives detachment as long as any link remains.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     *string   `json:"title"`
	Body      string    `gorm:"not null" json:"body"`
	Tags      *string   `json:"tags"` // JSON list in a TEXT column
	CreatedAt time.Time `json:"created_at"`
}
