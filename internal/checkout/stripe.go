package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/vslbak/gymflow-web/internal/logger"
)

type StripeConfig struct {
	SecretKey string
	Currency  string
	PublicURL string
}

func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") {
		return fmt.Errorf("stripe: secret key must start with sk_")
	}
	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}
	if c.PublicURL == "" {
		return fmt.Errorf("stripe: public url is required")
	}
	return nil
}

// StripeProvider creates hosted Checkout Sessions in payment mode. The
// booking stays PENDING until Verify reports the session as paid.
type StripeProvider struct {
	cfg StripeConfig
}

func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}, nil
}

func (p *StripeProvider) Name() string { return ProviderStripe }

// ToMinorUnits converts a price to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

func (p *StripeProvider) Start(ctx context.Context, req Request) (*Result, error) {
	if req.BookingID == "" {
		return nil, fmt.Errorf("stripe: booking id is required")
	}
	cents := ToMinorUnits(req.Amount)
	if cents < 0 {
		return nil, fmt.Errorf("stripe: amount must not be negative")
	}
	if cents == 0 {
		return &Result{URL: SuccessURL(p.cfg.PublicURL, req.BookingID), Reference: req.BookingID, Paid: true}, nil
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		// Stripe substitutes the placeholder with the session id.
		SuccessURL:        stripe.String(strings.TrimSuffix(p.cfg.PublicURL, "/") + "/booking/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(CancelURL(p.cfg.PublicURL)),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.cfg.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ClassName),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("session_id", req.SessionID)

	cs, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	logger.Info("Stripe checkout session created", "checkout_session", cs.ID, "booking_id", req.BookingID, "amount_cents", cents)

	return &Result{
		URL:       cs.URL,
		Reference: cs.ID,
		Paid:      cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

func (p *StripeProvider) Verify(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, fmt.Errorf("stripe: checkout session id is required")
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := session.Get(reference, params)
	if err != nil {
		return false, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}

	return cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired, nil
}
