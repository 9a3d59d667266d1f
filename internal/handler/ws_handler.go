package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hadfi53/rakb-sub004/internal/auth"
	"github.com/hadfi53/rakb-sub004/internal/notify"
	"github.com/hadfi53/rakb-sub004/internal/response"
	"go.uber.org/zap"
)

const wsReadDeadline = 60 * time.Second

// WSHandler upgrades authenticated clients and registers them on the push hub.
type WSHandler struct {
	hub        *notify.Hub
	jwtManager *auth.JWTManager
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *notify.Hub, jwtManager *auth.JWTManager, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtManager: jwtManager,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the websocket endpoint on the given router group.
func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/ws", h.Connect)
}

// Connect handles GET /api/v1/ws. Browsers cannot set headers on websocket
// requests, so the token rides in the query string.
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := h.jwtManager.ValidateAccessToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID := claims.UserID
	h.hub.Add(userID, conn)
	h.logger.Info("websocket connected", zap.String("user_id", userID.String()))

	// Read loop only services pings and detects disconnects; the server
	// never expects client messages.
	go func() {
		defer func() {
			h.hub.Remove(userID, conn)
			_ = conn.Close()
			h.logger.Info("websocket disconnected", zap.String("user_id", userID.String()))
		}()

		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		}
	}()
}
