// Package snapshot provides the client-side copy of the last successfully
// refreshed domain data.
//
// # Overview
//
// The DomainStore writes every listing, reservation and directory entry of a
// successful refresh here, tagged with the owner (user id and role) it was
// fetched for. When the first load after a cold start cannot reach the
// server, the store falls back to this copy and flags itself stale.
//
// # Data Model
//
// Each row holds the JSON payload of one record, its kind, its position in
// the server's ordering and the refresh time. A Replace removes every row
// first, so the table only ever holds one owner's data.
//
// Key Types
//
//   - type Repository: interface used by the DomainStore
//   - type SQLiteRepository: SQLite implementation over dbx.DBTX
//
// Typical Usage
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return snapshot.NewSQLiteRepository(tx).Replace(ctx, owner, rows, time.Now())
//	})
//	rows, _ := snapshot.NewSQLiteRepository(db).GetAll(ctx, owner)
package snapshot
