package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v76"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
		err  error
	}{
		{1, 100, nil},
		{19.99, 1999, nil},
		{0.1 + 0.2, 30, nil},
		{10.005, 1001, nil},
		{0, 0, ErrInvalidAmount},
		{-5, 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		got, err := ToMinorUnits(tt.in)
		if !errors.Is(err, tt.err) {
			t.Fatalf("ToMinorUnits(%v) err = %v, want %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Fatalf("ToMinorUnits(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStripeCreateIntent(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret"}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	p := NewStripe("sk_test_123", "INR", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	secret, err := p.CreateIntent(context.Background(), 49.5)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if secret != "pi_123_secret" {
		t.Fatalf("secret = %q", secret)
	}
	if got := form["amount"]; len(got) != 1 || got[0] != "4950" {
		t.Fatalf("amount = %v", got)
	}
	if got := form["currency"]; len(got) != 1 || got[0] != "inr" {
		t.Fatalf("currency = %v", got)
	}

	if _, err := p.CreateIntent(context.Background(), 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
