package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caixapos/internal/service"
)

type LoyaltyHandler struct {
	loyalty service.LoyaltyService
}

func NewLoyaltyHandler(loyalty service.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{loyalty: loyalty}
}

// Balance godoc
// @Summary Saldo de pontos do cliente
// @Tags clientes
// @Param id path string true "ID do cliente"
// @Success 200 {object} dto.LoyaltyBalanceResponse
// @Security BearerAuth
// @Router /v1/clientes/{id}/pontos [get]
func (h *LoyaltyHandler) Balance(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.loyalty.Balance(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Statement godoc
// @Summary Extrato de pontos do cliente
// @Tags clientes
// @Param id path string true "ID do cliente"
// @Success 200 {object} dto.LoyaltyStatementResponse
// @Security BearerAuth
// @Router /v1/clientes/{id}/extrato [get]
func (h *LoyaltyHandler) Statement(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.loyalty.Statement(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
