// Package cli provides the interactive SaveEat command-line client.
//
// It wires configuration, local session storage, the remote service client
// and both stores behind a REPL. Typical flow: restore the stored session,
// log in and choose a role, then publish listings (restaurants) or reserve
// and collect them (associations).
//
// Key features:
//   - Register / Login / Logout, role selection and profile edits
//   - Listings: list, search, publish, edit, delete, status changes
//   - Reservations: reserve, cancel, confirm collection
//   - Counterpart directory, impact statistics, document upload
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartRefreshWatcher, and runREPL for details.
package cli
