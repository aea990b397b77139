package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AbrirCaixaRequest carries the counted opening float. Range checking
// happens in the service; validator tags cannot inspect decimals.
type AbrirCaixaRequest struct {
	ValorInicial decimal.Decimal `json:"valor_inicial"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID            string           `json:"id"`
	StoreID       string           `json:"store_id"`
	ValorInicial  decimal.Decimal  `json:"valor_inicial"`
	ValorFinal    *decimal.Decimal `json:"valor_final,omitempty"`
	Aberto        bool             `json:"aberto"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at,omitempty"`
}

type ProductSold struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type MethodTotal struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// SalesSummaryResponse is derived on demand: a live preview while the
// register is open, the authoritative record once closed. Slices are sorted
// so two computations over the same orders serialize identically.
type SalesSummaryResponse struct {
	ProductsSold        []ProductSold    `json:"products_sold"`
	PaymentMethodTotals []MethodTotal    `json:"payment_method_totals"`
	OrdersBySource      []SourceCount    `json:"orders_by_source"`
	TotalSales          decimal.Decimal  `json:"total_sales"`
	TotalDiscount       decimal.Decimal  `json:"total_discount"`
	LoyaltyOrdersCount  int              `json:"loyalty_orders_count"`
	InitialAmount       decimal.Decimal  `json:"initial_amount"`
	FinalAmount         *decimal.Decimal `json:"final_amount,omitempty"`
	// PerishableCheckAvailable tells the pre-close screen to offer the
	// perishable stock reconciliation. Skipping it never blocks the close.
	PerishableCheckAvailable bool `json:"perishable_check_available,omitempty"`
}

type FecharCaixaResponse struct {
	Caixa           CaixaResponse        `json:"caixa"`
	Resumo          SalesSummaryResponse `json:"resumo"`
	PedidosEntregues int64               `json:"pedidos_entregues"`
}

type VincularPendentesResponse struct {
	PedidosVinculados int64 `json:"pedidos_vinculados"`
}

type CaixaListResponse struct {
	Data  []CaixaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
