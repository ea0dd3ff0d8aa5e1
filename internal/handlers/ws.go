package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/types"
	"github.com/vigil-dev/vigil/internal/utils"
)

var (
	tenantClients   = make(map[string]map[*websocket.Conn]bool)
	tenantClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastRefresh tells every dashboard connected for the tenant to refetch.
func BroadcastRefresh(tenantID string) {
	tenantClientsMu.RLock()
	clients, exists := tenantClients[tenantID]
	if !exists || len(clients) == 0 {
		tenantClientsMu.RUnlock()
		return
	}

	// Copy so we never write to a socket while holding the lock.
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	tenantClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":      "refresh",
			"message":   "Monitoring data updated",
			"tenant_id": tenantID,
		})

		if err != nil {
			tenantClientsMu.Lock()
			if clients, exists := tenantClients[tenantID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(tenantClients, tenantID)
				}
			}
			tenantClientsMu.Unlock()
			conn.Close()
		}
	}
}

func (h *Handler) WebSocket(c *gin.Context) {
	user, err := utils.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	tenantID := user.TenantID

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	tenantClientsMu.Lock()
	if tenantClients[tenantID] == nil {
		tenantClients[tenantID] = make(map[*websocket.Conn]bool)
	}
	tenantClients[tenantID][conn] = true
	tenantClientsMu.Unlock()

	defer func() {
		tenantClientsMu.Lock()
		if clients, exists := tenantClients[tenantID]; exists {
			delete(clients, conn)
			if len(clients) == 0 {
				delete(tenantClients, tenantID)
			}
		}
		tenantClientsMu.Unlock()
		conn.Close()

		h.logger.Debug("websocket connection closed", zap.String("tenant_id", tenantID))
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":      "connected",
		"message":   "WebSocket connection established",
		"tenant_id": tenantID,
	})

	if err != nil {
		h.logger.Warn("failed to send welcome message", zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			break
		}

		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket error", zap.String("tenant_id", tenantID), zap.Error(err))
			}
			break
		}
	}
}
