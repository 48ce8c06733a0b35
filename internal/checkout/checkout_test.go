package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"

	"github.com/vslbak/gymflow-web/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func setupMockBackend(handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) func() {
	stripe.SetBackend(stripe.APIBackend, &mockBackend{handler: handler})
	return func() {
		stripe.SetBackend(stripe.APIBackend, nil)
	}
}

func testStripeConfig() StripeConfig {
	return StripeConfig{SecretKey: "sk_test_123", Currency: "USD", PublicURL: "http://localhost:5173/"}
}

func TestRedirectProvider(t *testing.T) {
	p := NewRedirectProvider("http://localhost:5173/")

	res, err := p.Start(context.Background(), Request{BookingID: "booking-7", Amount: 25})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/booking/success?session_id=booking-7", res.URL)
	assert.Equal(t, "booking-7", res.Reference)
	assert.True(t, res.Paid)

	_, err = p.Start(context.Background(), Request{})
	assert.Error(t, err)

	ok, err := p.Verify(context.Background(), "booking-7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StripeConfig)
		errMsg string
	}{
		{"valid", func(*StripeConfig) {}, ""},
		{"missing key", func(c *StripeConfig) { c.SecretKey = "" }, "secret key is required"},
		{"publishable key", func(c *StripeConfig) { c.SecretKey = "pk_test_1" }, "must start with sk_"},
		{"missing currency", func(c *StripeConfig) { c.Currency = "" }, "currency is required"},
		{"missing url", func(c *StripeConfig) { c.PublicURL = "" }, "public url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStripeConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2500), ToMinorUnits(25))
	assert.Equal(t, int64(2599), ToMinorUnits(25.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}

func TestStripeProvider_Start(t *testing.T) {
	p, err := NewStripeProvider(testStripeConfig())
	require.NoError(t, err)

	var captured *stripe.CheckoutSessionParams
	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == http.MethodPost && path == "/v1/checkout/sessions" {
			captured = params.(*stripe.CheckoutSessionParams)
			return []byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","payment_status":"unpaid"}`), nil
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	res, err := p.Start(context.Background(), Request{
		BookingID:     "booking-1",
		SessionID:     "session-1",
		ClassName:     "Power Yoga Flow",
		Amount:        25,
		CustomerEmail: "test@gymflow.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", res.URL)
	assert.Equal(t, "cs_test_1", res.Reference)
	assert.False(t, res.Paid)

	require.NotNil(t, captured)
	assert.Equal(t, "booking-1", *captured.ClientReferenceID)
	assert.Equal(t, "test@gymflow.com", *captured.CustomerEmail)
	require.Len(t, captured.LineItems, 1)
	assert.Equal(t, int64(2500), *captured.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "usd", *captured.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Power Yoga Flow", *captured.LineItems[0].PriceData.ProductData.Name)
	assert.Equal(t, "booking-1", captured.Metadata["booking_id"])
}

func TestStripeProvider_StartFreeClassSkipsStripe(t *testing.T) {
	p, err := NewStripeProvider(testStripeConfig())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	res, err := p.Start(context.Background(), Request{BookingID: "booking-2", Amount: 0})
	require.NoError(t, err)
	assert.True(t, res.Paid)
	assert.Equal(t, "booking-2", res.Reference)
}

func TestStripeProvider_StartError(t *testing.T) {
	p, err := NewStripeProvider(testStripeConfig())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{Code: stripe.ErrorCodeAmountTooSmall, Msg: "Amount too small"}
	})
	defer cleanup()

	res, err := p.Start(context.Background(), Request{BookingID: "booking-3", Amount: 0.2})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: failed to create checkout session")
}

func TestStripeProvider_Verify(t *testing.T) {
	p, err := NewStripeProvider(testStripeConfig())
	require.NoError(t, err)

	status := "paid"
	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == http.MethodGet && path == "/v1/checkout/sessions/cs_test_1" {
			return []byte(fmt.Sprintf(`{"id":"cs_test_1","object":"checkout.session","payment_status":%q}`, status)), nil
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	ok, err := p.Verify(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, ok)

	status = "unpaid"
	ok, err = p.Verify(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Verify(context.Background(), "")
	assert.Error(t, err)
}
