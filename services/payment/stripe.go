// Package payment wraps the hosted checkout provider.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/teachme/platform-api/utils/apperr"
)

const currency = "usd"

// CheckoutRequest describes one course purchase
type CheckoutRequest struct {
	CourseID uint
	Title    string
	Price    int // whole currency units, as stored on the course
	UserID   uint
}

// CheckoutSession is what the provider returned for a CheckoutRequest
type CheckoutSession struct {
	ID       string
	URL      string
	Amount   int64
	Currency string
}

// Gateway creates hosted checkout sessions
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// StripeGateway implements Gateway with Stripe Checkout
type StripeGateway struct {
	api         *stripecl.API
	frontendURL string
}

// NewStripeGateway creates a client for secretKey. Redirect URLs point at frontendURL.
func NewStripeGateway(secretKey, frontendURL string) *StripeGateway {
	api := &stripecl.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:         api,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// UnitAmount converts a course price into the provider's minor-unit integer
func UnitAmount(price int) int64 {
	return int64(price) * 100
}

// SessionParams builds the checkout parameters for req
func (g *StripeGateway) SessionParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(fmt.Sprintf("%s/learn/%d?success=true", g.frontendURL, req.CourseID)),
		CancelURL:          stripe.String(fmt.Sprintf("%s/courses/%d?canceled=true", g.frontendURL, req.CourseID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(UnitAmount(req.Price)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
				},
			},
		},
	}
	params.AddMetadata("course_id", strconv.FormatUint(uint64(req.CourseID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))
	return params
}

// CreateCheckout creates the session. Provider errors are returned as-is,
// wrapped as upstream failures, with no retry.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := g.SessionParams(req)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeUpstream, "Failed to create checkout session")
	}

	return &CheckoutSession{
		ID:       s.ID,
		URL:      s.URL,
		Amount:   UnitAmount(req.Price),
		Currency: currency,
	}, nil
}
