package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"caixapos/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin panels are allowed; auth happens via the token, not the
	// Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Feed godoc
// @Summary Feed websocket de eventos de pedidos da loja
// @Tags pedidos
// @Router /v1/ws/pedidos [get]
func (h *WSHandler) Feed(c *gin.Context) {
	claims, ok := storeFromClaims(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	realtime.NewClient(h.hub, conn, claims.StoreID.String()).Start()
}
