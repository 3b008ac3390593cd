package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"card-sorting-go/internal/auth"
	"card-sorting-go/internal/config"
	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/middleware"
	ws "card-sorting-go/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newUpgrader(policy middleware.OriginPolicy) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			// Non-browser clients send no Origin.
			return origin == "" || policy.Allows(origin)
		},
	}
}

// WebSocketHandler upgrades the connection and subscribes it to game updates.
// A session token is optional; without one the client only observes.
func WebSocketHandler(hubProvider func() (*ws.Hub, bool), engine *sorting.Engine, cfg config.Config) gin.HandlerFunc {
	upgrader := newUpgrader(middleware.NewOriginPolicy(cfg))

	return func(c *gin.Context) {
		sessionID := ""
		if token := middleware.TokenFromRequest(c); token != "" {
			claims, err := auth.ParseSessionToken(token, cfg)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
				return
			}
			sessionID = claims.SessionID
		}

		// Preconditions before attempting the upgrade so we can return HTTP errors normally.
		room := strings.TrimSpace(c.Query("room"))
		if room == "" {
			room = ws.DefaultRoom
		}
		hub, ok := hubProvider()
		if !ok || hub == nil {
			log.Printf("WebSocketHandler hubProvider returned nil: session=%q room=%q", sessionID, room)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocketHandler upgrade failed: method=%s path=%s remote=%s origin=%q err=%v",
				c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Request.Header.Get("Origin"), err,
			)
			return
		}

		client := ws.NewClient(conn, hub, room, sessionID)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump(func(msg []byte) {
			handleWSMessage(hub, client, engine, msg)
		})

		_ = client.SendMessage("connected", map[string]any{
			"session_id": sessionID,
			"room":       room,
		})
		_ = client.SendMessage("state", engine.View())
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleWSMessage serves the read-only requests a UI may send. Game events
// go through the HTTP API so they carry a session token.
func handleWSMessage(hub *ws.Hub, client *ws.Client, engine *sorting.Engine, msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		_ = client.SendMessage("error", map[string]any{"error": "invalid json"})
		return
	}

	switch in.Type {
	case "join_room":
		var p struct {
			Room string `json:"room"`
		}
		if err := json.Unmarshal(in.Payload, &p); err != nil || strings.TrimSpace(p.Room) == "" {
			_ = client.SendMessage("error", map[string]any{"error": "invalid room"})
			return
		}
		room := strings.TrimSpace(p.Room)
		hub.Join(client, room)
		_ = client.SendMessage("joined_room", map[string]any{"room": room})
	case "snapshot":
		_ = client.SendMessage("state", engine.View())
	default:
		_ = client.SendMessage("error", map[string]any{"error": "unknown message type"})
	}
}
