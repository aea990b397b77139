package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegister is a till session: opened with a counted float, closed once
// with the reconciled total. At most one row per store may have a null
// closed_at, enforced by a partial unique index rather than application
// locks, so concurrent terminals agree on "the open session" through the
// database.
type CashRegister struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpenedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	InitialAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// FinalAmount is set exactly once at close, from the sales summary.
	FinalAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OpenedAt    time.Time
	ClosedAt    *time.Time
}

// Open reports whether the session is still accepting orders.
func (c *CashRegister) Open() bool { return c.ClosedAt == nil }
