package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List godoc
// @Summary Lista pedidos da loja
// @Tags pedidos
// @Param status query string false "Filtro de status (pending|preparing|ready|delivered|cancelled|all)"
// @Param date query string false "Dia (YYYY-MM-DD)"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} dto.OrderListResponse
// @Security BearerAuth
// @Router /v1/pedidos [get]
func (h *OrderHandler) List(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := dto.OrderFilter{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Page:   page,
		Limit:  limit,
	}

	resp, err := h.orders.List(c.Request.Context(), claims.StoreID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Detalha um pedido
// @Tags pedidos
// @Param id path string true "ID do pedido"
// @Success 200 {object} dto.OrderResponse
// @Security BearerAuth
// @Router /v1/pedidos/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.Get(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Advance godoc
// @Summary Avança o pedido para o próximo status do fluxo
// @Tags pedidos
// @Param id path string true "ID do pedido"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/pedidos/{id}/avancar [post]
func (h *OrderHandler) Advance(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.Advance(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResolvePayment godoc
// @Summary Resolve o pagamento de um pedido com reserva e entrega
// @Tags pedidos
// @Param id path string true "ID do pedido"
// @Param body body dto.ResolvePaymentRequest true "Método escolhido"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/pedidos/{id}/pagamento [post]
func (h *OrderHandler) ResolvePayment(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolvePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.orders.ResolvePayment(c.Request.Context(), claims.StoreID, id, req.Metodo)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancela um pedido, estornando pontos quando aplicável
// @Tags pedidos
// @Param id path string true "ID do pedido"
// @Success 200 {object} dto.CancelResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/pedidos/{id}/cancelar [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.Cancel(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		// A partial failure still cancelled the order; the body carries the
		// warning and the status stays 200.
		if apierror.KindOf(err) == apierror.KindPartialFailure && resp != nil {
			c.JSON(http.StatusOK, resp)
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentMethods godoc
// @Summary Lista métodos de pagamento aceitos na resolução
// @Tags pedidos
// @Success 200 {object} dto.PaymentMethodsResponse
// @Security BearerAuth
// @Router /v1/pedidos/metodos-pagamento [get]
func (h *OrderHandler) PaymentMethods(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	methods, err := h.orders.PaymentMethods(c.Request.Context(), claims.StoreID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentMethodsResponse{Metodos: methods})
}
