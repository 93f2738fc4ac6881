// Package payments creates hosted checkout sessions for the issue expedite flow.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrNotConfigured = errors.New("payment provider not configured")

// CheckoutRequest is what the client sends to start a checkout.
type CheckoutRequest struct {
	Title   string
	IssueID string
	Email   string
}

// CheckoutProvider creates a hosted checkout session and returns its URL.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (string, error)
}

// StripeCheckout creates one-off payment sessions through Stripe Checkout.
type StripeCheckout struct {
	api      *client.API
	domain   string
	currency string
	amount   int64
}

// NewStripeCheckout returns a provider for key. An empty key yields a provider
// that fails every request with ErrNotConfigured.
func NewStripeCheckout(key, domain, currency string, amount int64) *StripeCheckout {
	s := &StripeCheckout{
		domain:   strings.TrimRight(domain, "/"),
		currency: currency,
		amount:   amount,
	}
	if key != "" {
		s.api = client.New(key, nil)
	}
	return s
}

func (s *StripeCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if s.api == nil {
		return "", ErrNotConfigured
	}

	params := s.sessionParams(req)
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *StripeCheckout) sessionParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	issueID := url.QueryEscape(req.IssueID)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
					UnitAmount: stripe.Int64(s.amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}&issueId=%s", s.domain, issueID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/payment-cancelled?issueId=%s", s.domain, issueID)),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("issueId", req.IssueID)
	params.AddMetadata("title", req.Title)

	return params
}
