package dto

type LoyaltyBalanceResponse struct {
	CustomerID string `json:"customer_id"`
	Points     int    `json:"points"`
}

type LoyaltyTransactionResponse struct {
	ID              string  `json:"id"`
	OrderID         *string `json:"order_id,omitempty"`
	Points          int     `json:"points"`
	TransactionType string  `json:"transaction_type"`
	IsReversal      bool    `json:"is_reversal,omitempty"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"created_at"`
}

type LoyaltyStatementResponse struct {
	CustomerID   string                       `json:"customer_id"`
	Points       int                          `json:"points"`
	Transactions []LoyaltyTransactionResponse `json:"transactions"`
}
