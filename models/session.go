package models

import "time"

const (
	SessionActive = "active"
	SessionClosed = "closed"
)

// Session -> satu periode okupansi meja oleh customer (seat sampai close).
// Maksimal satu session aktif per meja; invariant dijaga oleh SessionService.
type Session struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableID   uint       `gorm:"not null;index" json:"table_id"`
	Table     Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	Status    string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
