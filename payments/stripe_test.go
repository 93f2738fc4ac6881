package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionWithoutKey(t *testing.T) {
	s := NewStripeCheckout("", "https://cityfixer.example", "usd", 10000)

	_, err := s.CreateSession(context.Background(), CheckoutRequest{Title: "Pothole", IssueID: "abc"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSessionParams(t *testing.T) {
	s := NewStripeCheckout("sk_test_123", "https://cityfixer.example/", "usd", 10000)

	params := s.sessionParams(CheckoutRequest{
		Title:   "Pothole on Main",
		IssueID: "65f1c0ffee",
		Email:   "a@x.com",
	})

	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, int64(10000), *item.PriceData.UnitAmount)
	assert.Equal(t, "Pothole on Main", *item.PriceData.ProductData.Name)

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "a@x.com", *params.CustomerEmail)
	assert.Equal(t,
		"https://cityfixer.example/payment-success?session_id={CHECKOUT_SESSION_ID}&issueId=65f1c0ffee",
		*params.SuccessURL)
	assert.Equal(t, "https://cityfixer.example/payment-cancelled?issueId=65f1c0ffee", *params.CancelURL)
	assert.Equal(t, "65f1c0ffee", params.Metadata["issueId"])
}

func TestSessionParamsWithoutEmail(t *testing.T) {
	s := NewStripeCheckout("sk_test_123", "https://cityfixer.example", "eur", 500)

	params := s.sessionParams(CheckoutRequest{Title: "Light", IssueID: "id"})
	assert.Nil(t, params.CustomerEmail)
}
