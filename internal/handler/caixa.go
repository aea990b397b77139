package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"caixapos/internal/dto"
	"caixapos/internal/service"
)

type CaixaHandler struct {
	caixa service.CaixaService
}

func NewCaixaHandler(caixa service.CaixaService) *CaixaHandler {
	return &CaixaHandler{caixa: caixa}
}

// Abrir godoc
// @Summary Abre o caixa da loja com o fundo de troco contado
// @Tags caixa
// @Param body body dto.AbrirCaixaRequest true "Valor inicial"
// @Success 201 {object} dto.CaixaResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.caixa.Abrir(c.Request.Context(), claims.StoreID, claims.UserID, req.ValorInicial)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Atual godoc
// @Summary Retorna o caixa aberto da loja
// @Tags caixa
// @Success 200 {object} dto.CaixaResponse
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/caixa/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.caixa.Atual(c.Request.Context(), claims.StoreID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VincularPendentes godoc
// @Summary Vincula ao caixa os pedidos da loja ainda sem sessão
// @Tags caixa
// @Param id path string true "ID do caixa"
// @Success 200 {object} dto.VincularPendentesResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/caixa/{id}/vincular-pendentes [post]
func (h *CaixaHandler) VincularPendentes(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.caixa.VincularPendentes(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumo godoc
// @Summary Resumo de vendas da sessão (prévia ou definitivo)
// @Tags caixa
// @Param id path string true "ID do caixa"
// @Success 200 {object} dto.SalesSummaryResponse
// @Security BearerAuth
// @Router /v1/caixa/{id}/resumo [get]
func (h *CaixaHandler) Resumo(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.caixa.Resumo(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fechar godoc
// @Summary Fecha o caixa, entregando os pedidos vivos da sessão
// @Tags caixa
// @Param id path string true "ID do caixa"
// @Success 200 {object} dto.FecharCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/caixa/{id}/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.caixa.Fechar(c.Request.Context(), claims.StoreID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico godoc
// @Summary Lista sessões de caixa já fechadas
// @Tags caixa
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} dto.CaixaListResponse
// @Security BearerAuth
// @Router /v1/caixa/historico [get]
func (h *CaixaHandler) Historico(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.caixa.Historico(c.Request.Context(), claims.StoreID, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
