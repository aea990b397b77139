package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OrderFilter narrows the back-office order panel listing.
type OrderFilter struct {
	Status string // pending|preparing|ready|delivered|cancelled|all
	Date   string // YYYY-MM-DD; empty = today
	Page   int
	Limit  int
}

type ResolvePaymentRequest struct {
	Metodo string `json:"metodo" validate:"required,min=2"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductName   string          `json:"product_name"`
	VariationName *string         `json:"variation_name,omitempty"`
	Quantity      int             `json:"quantity"`
	ProductPrice  decimal.Decimal `json:"product_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	LoyaltyItem   bool            `json:"loyalty_item"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    int                 `json:"order_number"`
	Status         string              `json:"status"`
	Source         string              `json:"source"`
	PaymentMethod  string              `json:"payment_method"`
	Total          decimal.Decimal     `json:"total"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	DeliveryFee    decimal.Decimal     `json:"delivery_fee"`
	CustomerID     *string             `json:"customer_id,omitempty"`
	CashRegisterID *string             `json:"cash_register_id,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// AdvanceResponse reports the committed transition, or that the transition
// is withheld until the operator resolves the reservation payment.
type AdvanceResponse struct {
	NewStatus                 string   `json:"new_status,omitempty"`
	PaymentResolutionRequired bool     `json:"payment_resolution_required,omitempty"`
	PaymentMethods            []string `json:"payment_methods,omitempty"`
}

// CancelResponse carries the refund outcome alongside the cancellation.
// RefundPending=true means the cancel committed but the point refund did
// not, so an operator must reconcile manually.
type CancelResponse struct {
	NewStatus       string `json:"new_status"`
	LoyaltyRefunded int    `json:"loyalty_refunded"`
	RefundPending   bool   `json:"refund_pending,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

type PaymentMethodsResponse struct {
	Metodos []string `json:"metodos"`
}
