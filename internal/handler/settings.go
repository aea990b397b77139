package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caixapos/internal/dto"
	"caixapos/internal/service"
)

type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Configuração de fluxo de pedidos da loja
// @Tags configuracao
// @Success 200 {object} dto.SettingsResponse
// @Security BearerAuth
// @Router /v1/configuracao [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.settings.Get(c.Request.Context(), claims.StoreID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Atualiza os toggles de fluxo da loja
// @Tags configuracao
// @Param body body dto.UpdateSettingsRequest true "Campos a alterar"
// @Success 200 {object} dto.SettingsResponse
// @Security BearerAuth
// @Router /v1/configuracao [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.settings.Update(c.Request.Context(), claims.StoreID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
