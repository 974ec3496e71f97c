package chat

import (
	"context"

	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	userLabel  = "User"
	tutorLabel = "AI Tutor"

	LeftNotice     = "A user left the chat"
	ThrottleNotice = "System: you are sending messages too quickly"
)

// RelayConfig sets the per-connection message rate
type RelayConfig struct {
	RatePerSecond float64
	Burst         int
}

// Relay fans room messages out and answers each one through the model
type Relay struct {
	hub       *Hub
	completer Completer
	cfg       RelayConfig
}

// NewRelay creates a relay over hub
func NewRelay(hub *Hub, completer Completer, cfg RelayConfig) *Relay {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &Relay{hub: hub, completer: completer, cfg: cfg}
}

// Hub returns the room registry
func (r *Relay) Hub() *Hub {
	return r.hub
}

// Connect wraps conn in a member and joins it to room
func (r *Relay) Connect(room string, conn Sender) *Member {
	var limiter *rate.Limiter
	if r.cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RatePerSecond), r.cfg.Burst)
	}
	m := NewMember(conn, limiter)
	r.hub.Join(room, m)
	return m
}

// Disconnect removes m from room and tells whoever is left
func (r *Relay) Disconnect(room string, m *Member) {
	if remaining := r.hub.Leave(room, m); remaining > 0 {
		r.hub.Broadcast(room, LeftNotice, nil)
	}
}

// HandleMessage relays one inbound message from sender. It blocks until the
// model reply has been broadcast, so messages from one connection are
// answered in order.
func (r *Relay) HandleMessage(ctx context.Context, room string, sender *Member, text string) {
	if !sender.Allow() {
		if err := sender.Send(ThrottleNotice); err != nil {
			logger.L().Debug("throttle notice not delivered", zap.String("room", room), zap.Error(err))
		}
		return
	}

	r.hub.Broadcast(room, userLabel+": "+text, sender)

	// room messages carry no course context
	reply := r.completer.Complete(ctx, text, "")

	if failed := r.hub.Broadcast(room, tutorLabel+": "+reply, nil); len(failed) > 0 {
		logger.L().Debug("chat broadcast partially failed",
			zap.String("room", room),
			zap.Int("failed", len(failed)))
	}
}
