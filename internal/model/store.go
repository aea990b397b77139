package model

import (
	"time"

	"github.com/google/uuid"
)

// StoreSettings holds the admin-editable order-flow toggles. The ready
// status is always active; pending and preparing can be switched off so
// small operations present every new order as ready immediately.
type StoreSettings struct {
	StoreID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PendingActive   bool      `gorm:"not null;default:true"`
	PreparingActive bool      `gorm:"not null;default:true"`
	// PerishableControl enables the advisory perishable-stock check offered
	// before closing the register. It never blocks the close.
	PerishableControl bool `gorm:"not null;default:false"`
	UpdatedAt         time.Time
}

// PaymentMethod is a store-defined method offered during reservation payment
// resolution, in addition to the canonical PIX / Crédito / Débito / Dinheiro.
type PaymentMethod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(60);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}
