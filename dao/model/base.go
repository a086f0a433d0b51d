package model

import "time"

// Base is gorm.Model without soft deletes: rows of this schema are removed
// for real so unique keys (emails, slugs, ballot keys) can be reused.
type Base struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
