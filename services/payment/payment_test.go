package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"github.com/teachme/platform-api/utils/apperr"
)

const testSecret = "whsec_test"

func signedEvent(t *testing.T, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return payload, signed.Header
}

func TestSessionParams(t *testing.T) {
	g := NewStripeGateway("sk_test_mock_key", "http://localhost:3000/")
	params := g.SessionParams(CheckoutRequest{CourseID: 7, Title: "Go 101", Price: 49, UserID: 3})

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "http://localhost:3000/learn/7?success=true", *params.SuccessURL)
	assert.Equal(t, "http://localhost:3000/courses/7?canceled=true", *params.CancelURL)
	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, int64(4900), *item.PriceData.UnitAmount)
	assert.Equal(t, "Go 101", *item.PriceData.ProductData.Name)
	assert.Equal(t, "7", params.Metadata["course_id"])
	assert.Equal(t, "3", params.Metadata["user_id"])
}

func TestParseCompletedCheckout(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id":           "cs_test_1",
		"object":       "checkout.session",
		"mode":         "payment",
		"amount_total": 4900,
		"metadata":     map[string]string{"course_id": "7", "user_id": "3"},
	})

	got, err := ParseCompletedCheckout(payload, sig, testSecret)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cs_test_1", got.SessionID)
	assert.Equal(t, uint(7), got.CourseID)
	assert.Equal(t, uint(3), got.UserID)
	assert.Equal(t, int64(4900), got.AmountTotal)
}

func TestParseIgnoresOtherEvents(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.expired", map[string]any{"id": "cs_test_2", "mode": "payment"})
	got, err := ParseCompletedCheckout(payload, sig, testSecret)
	require.NoError(t, err)
	assert.Nil(t, got)

	payload, sig = signedEvent(t, "checkout.session.completed", map[string]any{"id": "cs_test_3", "mode": "subscription"})
	got, err = ParseCompletedCheckout(payload, sig, testSecret)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseRejectsBadSignature(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.completed", map[string]any{"id": "cs_test_4", "mode": "payment"})

	_, err := ParseCompletedCheckout(payload, sig, "whsec_other")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	_, err = ParseCompletedCheckout(payload, "", testSecret)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}

func TestParseRejectsMissingMetadata(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id":       "cs_test_5",
		"mode":     "payment",
		"metadata": map[string]string{"course_id": "7"},
	})
	_, err := ParseCompletedCheckout(payload, sig, testSecret)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}
