package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"youapp-backend/internal/models"
	"youapp-backend/internal/observability"
	"youapp-backend/internal/pkg/jwtauth"
)

// RoomWebSocketHandler handles the chats realtime channel. Clients join and
// leave rooms by sending frames; the service pushes newMessage and
// viewMessages events into rooms from the HTTP handlers.
type RoomWebSocketHandler struct {
	hub *Hub
	jwt *jwtauth.Service
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, jwt *jwtauth.Service) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, jwt: jwt}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientFrame struct {
	Event  string `json:"event"`
	ChatID string `json:"chatId"`
}

// Handle upgrades the connection and serves join/leave frames until close.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("youapp/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		if q := c.Query("token"); q != "" {
			token = "Bearer " + q
		}
	}
	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload: map[string]interface{}{
			"ws":       map[string]interface{}{"event": "ws_connect", "conn_id": info.ConnID},
			"identity": map[string]interface{}{"user_id": info.UserID, "device_id": info.DeviceID, "ip": info.IP},
		},
	}, observability.BuildHeaders(requestID, traceID))

	go h.serve(conn, info)
}

func (h *RoomWebSocketHandler) serve(conn *websocket.Conn, info ConnInfo) {
	joined := map[string]bool{}
	defer func() {
		for room := range joined {
			h.hub.RemoveClient(room, conn)
		}
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		_ = observability.PublishEvent(context.Background(), "ws_events.chats", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload: map[string]interface{}{
				"ws": map[string]interface{}{
					"event":       "ws_disconnect",
					"conn_id":     info.ConnID,
					"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				},
				"identity": map[string]interface{}{"user_id": info.UserID, "device_id": info.DeviceID, "ip": info.IP},
			},
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.reply(conn, "error", "invalid frame")
			continue
		}

		switch frame.Event {
		case "join":
			if frame.ChatID == "" {
				h.reply(conn, "error", "chatId is required")
				continue
			}
			h.hub.AddClient(frame.ChatID, conn, info)
			joined[frame.ChatID] = true
			h.hub.Broadcast(frame.ChatID, models.RoomEvent{
				Event: "joined",
				Data:  fmt.Sprintf("%s is joining room %s", info.ConnID, frame.ChatID),
			})
		case "leave":
			if frame.ChatID == "" {
				h.reply(conn, "error", "chatId is required")
				continue
			}
			h.hub.Broadcast(frame.ChatID, models.RoomEvent{
				Event: "leaved",
				Data:  fmt.Sprintf("%s is leaving room %s", info.ConnID, frame.ChatID),
			})
			h.hub.RemoveClient(frame.ChatID, conn)
			delete(joined, frame.ChatID)
		default:
			h.reply(conn, "error", "unknown event")
		}
	}
}

func (h *RoomWebSocketHandler) reply(conn *websocket.Conn, event, text string) {
	payload, _ := json.Marshal(models.RoomEvent{Event: event, Data: text})
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *RoomWebSocketHandler) validateToken(header string) (int64, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return h.jwt.ParseAccess(parts[1])
	}
	return 0, fmt.Errorf("invalid token")
}
