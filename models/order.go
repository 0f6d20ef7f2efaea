package models

import "time"

const (
	OrderPending   = "pending"
	OrderInKitchen = "in_kitchen"
	OrderReady     = "ready"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order selalu terikat ke session, bukan hanya ke meja. TableID di sini
// disalin dari hasil resolve token supaya order lama tetap menunjuk meja
// yang benar walaupun session sudah ditutup.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	SessionID   string      `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Session     Session     `gorm:"foreignKey:SessionID;references:ID" json:"-"`
	TableID     uint        `gorm:"not null;index" json:"table_id"`
	Table       Table       `gorm:"foreignKey:TableID;references:ID" json:"table"`
	Status      string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Notes       string      `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems  []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
