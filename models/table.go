package models

import "time"

// Status occupancy meja. Transisi hanya lewat services.SessionService,
// jangan update kolom ini langsung dari controller.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableBilling   = "billing"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null;unique" json:"table_number"`
	Capacity    int       `gorm:"not null;default:2" json:"capacity"`
	Status      string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
