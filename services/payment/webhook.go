package payment

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"github.com/teachme/platform-api/utils/apperr"
)

// CompletedCheckout is a paid checkout session reported by the webhook
type CompletedCheckout struct {
	SessionID   string
	CourseID    uint
	UserID      uint
	AmountTotal int64
}

// ParseCompletedCheckout verifies the signature and decodes the event.
// It returns (nil, nil) for events that need no action.
func ParseCompletedCheckout(payload []byte, signature, secret string) (*CompletedCheckout, error) {
	if signature == "" {
		return nil, apperr.New(apperr.CodeInvalid, "Received stripe event is not signed")
	}

	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalid, "Cannot verify stripe event")
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalid, "Unable to decode stripe event")
	}

	if session.Mode != stripe.CheckoutSessionModePayment {
		return nil, nil
	}

	courseID, err := metadataID(session.Metadata, "course_id")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalid, "Checkout session is missing course metadata")
	}
	userID, err := metadataID(session.Metadata, "user_id")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalid, "Checkout session is missing user metadata")
	}

	return &CompletedCheckout{
		SessionID:   session.ID,
		CourseID:    courseID,
		UserID:      userID,
		AmountTotal: session.AmountTotal,
	}, nil
}

func metadataID(md map[string]string, key string) (uint, error) {
	raw, ok := md[key]
	if !ok {
		return 0, fmt.Errorf("metadata %q not set", key)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("metadata %q is not an id: %q", key, raw)
	}
	return uint(id), nil
}
