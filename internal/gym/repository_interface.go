package gym

import "context"

type Repository interface {
	ListClasses(ctx context.Context) ([]Class, error)
	GetClass(ctx context.Context, id string) (*Class, error)
	CreateClass(ctx context.Context, class Class) (*Class, error)
	UpdateClass(ctx context.Context, class Class) (*Class, error)
	// DeleteClass removes the class and all of its sessions.
	DeleteClass(ctx context.Context, id string) error

	ListSessions(ctx context.Context) ([]Session, error)
	ListSessionsByClass(ctx context.Context, classID string) ([]Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	CreateSession(ctx context.Context, session Session) (*Session, error)
	UpdateSession(ctx context.Context, session Session) (*Session, error)
	DeleteSession(ctx context.Context, id string) error

	// ReserveSpot takes one spot, failing with ErrNoSpotsAvailable at zero.
	ReserveSpot(ctx context.Context, sessionID string) (*Session, error)
	// ReleaseSpot gives one spot back without exceeding the class capacity.
	ReleaseSpot(ctx context.Context, sessionID string) (*Session, error)
}
