package chat

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	chatsvc "github.com/teachme/platform-api/services/chat"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
)

// ChatHandler serves the room chat websocket
type ChatHandler struct {
	relay          *chatsvc.Relay
	replyTimeout   time.Duration
	maxMessageSize int64
}

// NewChatHandler creates a new chat handler
func NewChatHandler(relay *chatsvc.Relay, replyTimeout time.Duration) *ChatHandler {
	if replyTimeout <= 0 {
		replyTimeout = chatsvc.DefaultTimeout
	}
	return &ChatHandler{
		relay:          relay,
		replyTimeout:   replyTimeout,
		maxMessageSize: 64 * 1024,
	}
}

// Upgrade rejects plain HTTP requests to the websocket route
func (h *ChatHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Room handles GET /api/v1/ws/chat/:room_id
func (h *ChatHandler) Room() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *ChatHandler) serve(conn *websocket.Conn) {
	room := conn.Params("room_id")
	conn.SetReadLimit(h.maxMessageSize)

	member := h.relay.Connect(room, conn)
	logger.L().Debug("chat member joined", zap.String("room", room))

	defer func() {
		h.relay.Disconnect(room, member)
		_ = conn.Close()
		logger.L().Debug("chat member left", zap.String("room", room))
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Warn("chat connection closed", zap.String("room", room), zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.replyTimeout)
		h.relay.HandleMessage(ctx, room, member, string(data))
		cancel()
	}
}
