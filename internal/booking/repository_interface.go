package booking

import "context"

type Repository interface {
	Create(ctx context.Context, b Booking) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByCheckoutRef(ctx context.Context, ref string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
	SetCheckoutRef(ctx context.Context, id, ref string) error
	// Confirm moves a PENDING booking to CONFIRMED.
	Confirm(ctx context.Context, id string) (*Booking, error)
	// Cancel never re-opens a CANCELLED booking.
	Cancel(ctx context.Context, id string) (*Booking, error)
	Delete(ctx context.Context, id string) error
}
