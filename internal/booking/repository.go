package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vslbak/gymflow-web/internal/api"
)

var (
	ErrBookingNotFound  = errors.New("Booking not found")
	ErrAlreadyCancelled = errors.New("Booking is already cancelled")
)

const bookingColumns = `id, user_id, session_id, status,
	COALESCE(to_char(booking_date, 'YYYY-MM-DD'), '') AS booking_date, total_price,
	COALESCE(checkout_ref, '') AS checkout_ref, created_at, confirmed_at, cancelled_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b Booking) (*Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = api.StatusPending
	}
	query := `
		INSERT INTO bookings (id, user_id, session_id, status, booking_date, total_price)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, $6)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query, b.ID, b.UserID, b.SessionID, b.Status, b.BookingDate, b.TotalPrice)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where

	var b Booking
	if err := r.db.GetContext(ctx, &b, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByCheckoutRef(ctx context.Context, ref string) (*Booking, error) {
	return r.get(ctx, "checkout_ref = $1", ref)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *PostgresRepository) SetCheckoutRef(ctx context.Context, id, ref string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET checkout_ref = $2 WHERE id = $1`, id, ref)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *PostgresRepository) Confirm(ctx context.Context, id string) (*Booking, error) {
	query := `
		UPDATE bookings SET status = 'CONFIRMED', confirmed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == api.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	return current, nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, id string) (*Booking, error) {
	query := `
		UPDATE bookings SET status = 'CANCELLED', cancelled_at = NOW()
		WHERE id = $1 AND status <> 'CANCELLED'
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyCancelled
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
