package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/client/repositories/snapshot"
	"github.com/saveeat/saveeat-client/internal/dbx"
)

func snapshotOwner(sess models.Session) string {
	return fmt.Sprintf("%s:%s", sess.User.ID, sess.Role)
}

func (d *domainStore) getSnapshotRepo() snapshot.Repository {
	return snapshot.NewSQLiteRepository(d.db)
}

// saveSnapshot replaces the stored copy with a freshly fetched batch.
// Failures only cost the offline fallback, so they are logged.
func (d *domainStore) saveSnapshot(ctx context.Context, sess models.Session, listings []models.Listing, reservations []models.Reservation, directory []models.DirectoryEntry) {
	if d.db == nil {
		return
	}

	rows := make([]snapshot.Row, 0, len(listings)+len(reservations)+len(directory))
	var err error
	rows, err = appendRows(rows, snapshot.KindListing, listings, func(l models.Listing) models.ID { return l.ID })
	if err == nil {
		rows, err = appendRows(rows, snapshot.KindReservation, reservations, func(r models.Reservation) models.ID { return r.ID })
	}
	if err == nil {
		rows, err = appendRows(rows, snapshot.KindDirectory, directory, func(e models.DirectoryEntry) models.ID { return e.ID })
	}
	if err == nil {
		err = dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return snapshot.NewSQLiteRepository(tx).Replace(ctx, snapshotOwner(sess), rows, d.now())
		})
	}
	if err != nil {
		d.log.Warn(ctx, "save offline snapshot", "error", err)
	}
}

func appendRows[T any](rows []snapshot.Row, kind snapshot.Kind, items []T, id func(T) models.ID) ([]snapshot.Row, error) {
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", kind, id(item), err)
		}
		rows = append(rows, snapshot.Row{Kind: kind, ID: id(item).String(), Payload: payload})
	}
	return rows, nil
}

// restoreSnapshot fills an empty cache from the stored copy of sess's data
// and marks the store stale. The refresh error stays visible through Err.
func (d *domainStore) restoreSnapshot(ctx context.Context, sess models.Session) {
	if d.db == nil {
		return
	}

	rows, err := d.getSnapshotRepo().GetAll(ctx, snapshotOwner(sess))
	if err != nil {
		d.log.Warn(ctx, "load offline snapshot", "error", err)
		return
	}
	if len(rows) == 0 {
		return
	}

	var (
		listings     = []models.Listing{}
		reservations = []models.Reservation{}
		directory    = []models.DirectoryEntry{}
	)
	for _, row := range rows {
		switch row.Kind {
		case snapshot.KindListing:
			err = decodeRow(row, &listings)
		case snapshot.KindReservation:
			err = decodeRow(row, &reservations)
		case snapshot.KindDirectory:
			err = decodeRow(row, &directory)
		}
		if err != nil {
			d.log.Warn(ctx, "decode offline snapshot", "kind", row.Kind, "id", row.ID, "error", err)
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.Token != sess.Token || d.session.Role != sess.Role || len(d.listings) > 0 {
		return
	}
	d.listings = listings
	d.reservations = reservations
	d.directory = directory
	d.stale = true
	d.savedAt = rows[0].SavedAt
	d.log.Info(ctx, "showing offline snapshot", "listings", len(listings), "saved_at", d.savedAt)
}

func decodeRow[T any](row snapshot.Row, into *[]T) error {
	var v T
	if err := json.Unmarshal(row.Payload, &v); err != nil {
		return err
	}
	*into = append(*into, v)
	return nil
}

func (d *domainStore) dropSnapshot(ctx context.Context) {
	if d.db == nil {
		return
	}
	if err := d.getSnapshotRepo().Clear(ctx); err != nil {
		d.log.Warn(ctx, "clear offline snapshot", "error", err)
	}
}
