// Package models defines the client-side domain records: the Session owned
// by the SessionStore and the Listing, Reservation and DirectoryEntry
// collections owned by the DomainStore, plus the boundary types (ID,
// Timestamp) that normalise loosely typed server JSON.
package models
