package models

import "time"

// AccessToken -> bearer token opaque untuk self-order customer.
// Token diikat ke session, bukan ke meja: kalau session ditutup semua
// token ikut mati walaupun QR fisiknya masih tertempel di meja.
type AccessToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	SessionID string     `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Session   Session    `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Revoked   bool       `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
