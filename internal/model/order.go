package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
// pending → preparing → ready → delivered, with cancelled reachable from
// any non-terminal state. Which intermediate statuses are actually used by
// a store is decided by its StoreSettings flow toggles.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderSource is the intake channel. Immutable once the order is created.
type OrderSource string

const (
	SourceTotem      OrderSource = "totem"
	SourceWhatsApp   OrderSource = "whatsapp"
	SourceLojaOnline OrderSource = "loja_online"
	SourcePresencial OrderSource = "presencial"
	SourceIfood      OrderSource = "ifood"
)

const (
	// PaymentReservation is the placeholder payment method of a reservation
	// order; the real method is chosen only at fulfillment time.
	PaymentReservation = "reserva"

	// LoyaltyMarker flags orders paid (partly) with loyalty points,
	// e.g. "fidelidade - 50 pontos".
	LoyaltyMarker = "fidelidade"
)

// Order is created by the intake channels already in pending status and is
// mutated only through the order service transitions, never hard-deleted.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// OrderNumber is the human-facing, store-scoped sequence assigned at intake.
	OrderNumber    int         `gorm:"not null"`
	StoreID        uuid.UUID   `gorm:"type:uuid;not null;index:idx_orders_store_status"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_store_status"`
	Source         OrderSource `gorm:"type:varchar(20);not null"`
	PaymentMethod  string      `gorm:"type:varchar(60);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid"`
	// CashRegisterID is null until the order is attributed to a till session.
	CashRegisterID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// IsReservation reports whether the order still carries the payment placeholder.
func (o *Order) IsReservation() bool {
	return strings.EqualFold(strings.TrimSpace(o.PaymentMethod), PaymentReservation)
}

// IsLoyaltyPaid reports whether the order was paid with loyalty points.
func (o *Order) IsLoyaltyPaid() bool {
	return strings.Contains(strings.ToLower(o.PaymentMethod), LoyaltyMarker)
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	// ProductName and VariationName are denormalized at intake so summaries
	// survive later catalog edits.
	ProductName   string  `gorm:"not null"`
	VariationName *string `gorm:"type:varchar(80)"`
	Quantity      int     `gorm:"not null"`
	ProductPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// IsLoyaltyRedemption marks an item "paid for" entirely by points.
func (i OrderItem) IsLoyaltyRedemption() bool {
	return i.ProductPrice.IsZero() && i.Subtotal.IsZero()
}
