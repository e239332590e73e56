package handlers

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Live board refresh channel. Clients that keep a socket open get a nudge to
// re-fetch when a task or expense changes; everyone else polls the REST API.

var (
	boardClients   = make(map[uint]map[*websocket.Conn]bool)
	boardClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastBoardRefresh nudges every socket watching the project.
func BroadcastBoardRefresh(projectID uint) {
	boardClientsMu.RLock()
	clients, exists := boardClients[projectID]
	if !exists || len(clients) == 0 {
		boardClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	boardClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":       "refresh",
			"message":    "Board data updated",
			"project_id": strconv.FormatUint(uint64(projectID), 10),
		})

		if err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			dropBoardClient(projectID, conn)
			conn.Close()
		}
	}
}

func dropBoardClient(projectID uint, conn *websocket.Conn) {
	boardClientsMu.Lock()
	if clients, exists := boardClients[projectID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(boardClients, projectID)
		}
	}
	boardClientsMu.Unlock()
}

func WebSocket(c *gin.Context) {
	projectID, err := utils.GetProjectID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project ID."})
		return
	}

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
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	boardClientsMu.Lock()
	if boardClients[projectID] == nil {
		boardClients[projectID] = make(map[*websocket.Conn]bool)
	}
	boardClients[projectID][conn] = true
	boardClientsMu.Unlock()

	defer func() {
		dropBoardClient(projectID, conn)
		conn.Close()
		log.Printf("WebSocket connection closed for project %d", projectID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":       "connected",
		"message":    "WebSocket connection established",
		"project_id": strconv.FormatUint(uint64(projectID), 10),
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
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

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %d: %v", projectID, err)
			}
			break
		}
	}
}
