package snapshot

import (
	"context"
	"time"
)

type Kind string

const (
	KindListing     Kind = "listing"
	KindReservation Kind = "reservation"
	KindDirectory   Kind = "directory"
)

// Row is one stored record. Payload is the record's JSON encoding.
type Row struct {
	Kind    Kind
	ID      string
	Payload []byte
	SavedAt time.Time
}

// Repository stores the rows of a single owner.
type Repository interface {
	// Replace drops whatever is stored and writes rows for owner, keeping
	// their order within each kind. Run it inside a transaction.
	Replace(ctx context.Context, owner string, rows []Row, savedAt time.Time) error

	// GetAll returns owner's rows grouped by kind in stored order, or an
	// empty slice when the snapshot belongs to someone else.
	GetAll(ctx context.Context, owner string) ([]Row, error)

	Clear(ctx context.Context) error
}
