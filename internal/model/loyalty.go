package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the weak-reference target of orders and the loyalty ledger.
type Customer struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name    string    `gorm:"not null"`
	Phone   *string   `gorm:"type:varchar(20)"`
	// LoyaltyPoints is always adjusted with atomic increments, never with
	// read-modify-write from application memory.
	LoyaltyPoints int `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	LoyaltyEarn   = "earn"
	LoyaltyRedeem = "redeem"
)

// LoyaltyTransaction is an append-only ledger entry. Points are signed:
// negative for redeem, positive for earn. Cancelling an order never mutates
// the original redeem rows; it appends a reversal earn entry instead.
// IsReversal marks that compensation entry; a partial unique index on
// (order_id) WHERE is_reversal guarantees at most one credit per order even
// under blind retries.
type LoyaltyTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID         *uuid.UUID `gorm:"type:uuid;index"`
	Points          int        `gorm:"not null"`
	TransactionType string     `gorm:"type:varchar(10);not null"`
	IsReversal      bool       `gorm:"not null;default:false"`
	Description     string     `gorm:"not null"`
	CreatedAt       time.Time
}
