package services

import (
	"time"

	"github.com/saveeat/saveeat-client/internal/client/models"
)

// The views below are pure reads over the cache. They never return nil and
// keep cache order. Reservations whose listing is not cached are skipped.

// AvailableListings are the listings still open for reservation ("pending",
// or its legacy synonym "available").
func (d *domainStore) AvailableListings() []models.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filter(d.listings, func(l models.Listing) bool { return l.Status.Open() })
}

// CollectableListings are available listings whose deadline is unknown or
// not yet passed at now.
func (d *domainStore) CollectableListings(now time.Time) []models.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filter(d.listings, func(l models.Listing) bool { return l.Status.Open() && !l.Expired(now) })
}

func (d *domainStore) UrgentListings() []models.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filter(d.listings, func(l models.Listing) bool { return l.Status.Open() && l.Urgent })
}

func (d *domainStore) ListingsByOwner(ownerID models.ID) []models.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filter(d.listings, func(l models.Listing) bool { return l.OwnerID == ownerID })
}

// ActiveReservationsFor returns the pending reservations of userID.
func (d *domainStore) ActiveReservationsFor(userID models.ID) []models.Reservation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filter(d.reservations, func(r models.Reservation) bool {
		return r.AssociationID == userID && r.Status == models.ReservationPending && d.hasListing(r.ListingID)
	})
}

func (d *domainStore) ReservationsForListing(listingID models.ID) []models.Reservation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.hasListing(listingID) {
		return []models.Reservation{}
	}
	return filter(d.reservations, func(r models.Reservation) bool { return r.ListingID == listingID })
}

// hasListing is the orphan check. Callers hold d.mu.
func (d *domainStore) hasListing(id models.ID) bool {
	return indexOf(d.listings, func(l models.Listing) bool { return l.ID == id }) >= 0
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := []T{}
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func indexOf[T any](in []T, match func(T) bool) int {
	for i, v := range in {
		if match(v) {
			return i
		}
	}
	return -1
}

func remove[T any](in []T, match func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
