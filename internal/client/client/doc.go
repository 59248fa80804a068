// Package client is the remote service client of the SaveEat backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface consumed by the session and domain stores.
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches the bearer
//     token, unwraps the {success, data, message} envelope and normalizes
//     failures into NetworkError and APIError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Callers match conditions with errors.Is: ErrUnavailable for transport
// failures, ErrUnauthorized for 401/403, ErrMalformedResponse when a body
// cannot be decoded. Message turns any of them into display text.
package client
