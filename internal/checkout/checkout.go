// Package checkout turns a pending booking into a payment redirect.
package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	ProviderRedirect = "redirect"
	ProviderStripe   = "stripe"
)

type Request struct {
	BookingID     string
	SessionID     string
	ClassName     string
	Amount        float64
	CustomerEmail string
}

// Result describes where the user goes next. Reference identifies the
// checkout at the provider and comes back as session_id on the success URL.
// Paid reports a checkout that needs no further confirmation.
type Result struct {
	URL       string
	Reference string
	Paid      bool
}

type Provider interface {
	Name() string
	Start(ctx context.Context, req Request) (*Result, error)
	Verify(ctx context.Context, reference string) (bool, error)
}

// SuccessURL is the storefront page the user lands on after checkout.
func SuccessURL(publicURL, reference string) string {
	return strings.TrimSuffix(publicURL, "/") + "/booking/success?session_id=" + url.QueryEscape(reference)
}

func CancelURL(publicURL string) string {
	return strings.TrimSuffix(publicURL, "/") + "/booking/cancel"
}

// RedirectProvider settles every checkout immediately and sends the user
// straight to the success page.
type RedirectProvider struct {
	publicURL string
}

func NewRedirectProvider(publicURL string) *RedirectProvider {
	return &RedirectProvider{publicURL: publicURL}
}

func (p *RedirectProvider) Name() string { return ProviderRedirect }

func (p *RedirectProvider) Start(_ context.Context, req Request) (*Result, error) {
	if req.BookingID == "" {
		return nil, fmt.Errorf("checkout: booking id is required")
	}
	return &Result{
		URL:       SuccessURL(p.publicURL, req.BookingID),
		Reference: req.BookingID,
		Paid:      true,
	}, nil
}

func (p *RedirectProvider) Verify(_ context.Context, reference string) (bool, error) {
	return reference != "", nil
}

var (
	_ Provider = (*RedirectProvider)(nil)
	_ Provider = (*StripeProvider)(nil)
)
