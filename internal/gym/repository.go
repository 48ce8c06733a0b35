package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrClassNotFound    = errors.New("Class not found")
	ErrSessionNotFound  = errors.New("Class session not found")
	ErrNoSpotsAvailable = errors.New("No spots available")
)

const classColumns = `id, name, instructor, duration, total_spots, image_url, category, level,
	location, description, price, class_time, days_of_week, what_to_bring, created_at`

const sessionColumns = `id, class_id, to_char(session_date, 'YYYY-MM-DD') AS session_date,
	COALESCE(to_char(start_time, 'HH24:MI'), '') AS start_time, spots_left, created_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListClasses(ctx context.Context) ([]Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes ORDER BY created_at, name`

	classes := []Class{}
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *PostgresRepository) GetClass(ctx context.Context, id string) (*Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	var class Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &class, nil
}

func (r *PostgresRepository) CreateClass(ctx context.Context, c Class) (*Class, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO classes (id, name, instructor, duration, total_spots, image_url, category, level,
			location, description, price, class_time, days_of_week, what_to_bring)
		VALUES (:id, :name, :instructor, :duration, :total_spots, :image_url, :category, :level,
			:location, :description, :price, :class_time, :days_of_week, :what_to_bring)
	`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return nil, err
	}
	return r.GetClass(ctx, c.ID)
}

func (r *PostgresRepository) UpdateClass(ctx context.Context, c Class) (*Class, error) {
	query := `
		UPDATE classes SET
			name = :name, instructor = :instructor, duration = :duration, total_spots = :total_spots,
			image_url = :image_url, category = :category, level = :level, location = :location,
			description = :description, price = :price, class_time = :class_time,
			days_of_week = :days_of_week, what_to_bring = :what_to_bring
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrClassNotFound
	}
	return r.GetClass(ctx, c.ID)
}

func (r *PostgresRepository) DeleteClass(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_sessions WHERE class_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrClassNotFound
	}
	return tx.Commit()
}

func (r *PostgresRepository) ListSessions(ctx context.Context) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions ORDER BY session_date, start_time`

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PostgresRepository) ListSessionsByClass(ctx context.Context, classID string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE class_id = $1 ORDER BY session_date, start_time`

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, classID); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1`

	var session Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, s Session) (*Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO class_sessions (id, class_id, session_date, start_time, spots_left)
		VALUES ($1, $2, $3, NULLIF($4, '')::time, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.ClassID, s.Date, s.Time, s.SpotsLeft); err != nil {
		return nil, err
	}
	return r.GetSession(ctx, s.ID)
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, s Session) (*Session, error) {
	query := `
		UPDATE class_sessions
		SET session_date = $2, start_time = NULLIF($3, '')::time, spots_left = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, s.ID, s.Date, s.Time, s.SpotsLeft)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrSessionNotFound
	}
	return r.GetSession(ctx, s.ID)
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) ReserveSpot(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		UPDATE class_sessions SET spots_left = spots_left - 1
		WHERE id = $1 AND spots_left > 0
		RETURNING ` + sessionColumns

	var session Session
	err := r.db.GetContext(ctx, &session, query, sessionID)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := r.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return nil, ErrNoSpotsAvailable
}

func (r *PostgresRepository) ReleaseSpot(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		UPDATE class_sessions AS s
		SET spots_left = LEAST(s.spots_left + 1, c.total_spots)
		FROM classes AS c
		WHERE s.id = $1 AND c.id = s.class_id
		RETURNING s.id, s.class_id, to_char(s.session_date, 'YYYY-MM-DD') AS session_date,
			COALESCE(to_char(s.start_time, 'HH24:MI'), '') AS start_time, s.spots_left, s.created_at
	`

	var session Session
	if err := r.db.GetContext(ctx, &session, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

var _ Repository = (*PostgresRepository)(nil)
