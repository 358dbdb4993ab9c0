package server

import (
	"net/http"
	"strings"

	"mingle-server/internal/auth"
	"mingle-server/internal/rtc"
	"mingle-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades authenticated requests to the realtime channel.
type WebSocketHandler struct {
	hub      *Hub
	relay    *rtc.Relay
	verifier *auth.TokenVerifier
	log      *logger.Logger
}

func NewWebSocketHandler(hub *Hub, relay *rtc.Relay, verifier *auth.TokenVerifier, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, relay: relay, verifier: verifier, log: log}
}

func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	userID, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("ws upgrade for user %s: %v", userID, err)
		return
	}

	client := NewClient(h.hub, h.relay, conn, userID, h.log)
	h.hub.register <- client
	client.Run()
}

func (h *WebSocketHandler) extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
