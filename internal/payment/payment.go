package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// Provider creates payment intents and returns the client secret the
// storefront confirms the payment with.
type Provider interface {
	CreateIntent(ctx context.Context, amount float64) (clientSecret string, err error)
}

// ToMinorUnits converts a major-unit amount (e.g. rupees) to minor units
// (paise), rounding half away from zero.
func ToMinorUnits(amount float64) (int64, error) {
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

type Stripe struct {
	api      *client.API
	currency string
}

var _ Provider = (*Stripe)(nil)

// NewStripe returns a Stripe provider charging in currency. backends may be
// nil to use Stripe's default endpoints.
func NewStripe(key, currency string, backends *stripe.Backends) *Stripe {
	api := &client.API{}
	api.Init(key, backends)
	return &Stripe{api: api, currency: strings.ToLower(currency)}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount float64) (string, error) {
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return "", err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(s.currency),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	slog.InfoContext(ctx, "Payment intent created", "intent_id", pi.ID, "amount_minor", minor, "currency", s.currency)
	return pi.ClientSecret, nil
}
