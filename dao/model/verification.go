package model

import "time"

// VerificationToken records a sign-in link that has been mailed and not yet
// used. The row is deleted when the link is redeemed.
type VerificationToken struct {
	Token     string    `gorm:"primaryKey;type:varchar(36);comment:链接令牌 ID"`
	Email     string    `gorm:"type:varchar(256);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
