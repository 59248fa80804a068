package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/common"
	"github.com/saveeat/saveeat-client/internal/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultCO2PerListingKg is the estimate used when the statistics endpoint
// is unreachable.
var DefaultCO2PerListingKg = decimal.RequireFromString("2.5")

// DomainStore is the local view of listings, reservations and the
// counterpart directory for the current session.
//
// Every mutation is pessimistic: the remote call goes first and the cache is
// touched only once the server has confirmed. A failed call leaves the cache
// exactly as it was.
type DomainStore interface {
	OnSessionChange(ctx context.Context, sess models.Session)
	Refresh(ctx context.Context) error
	Reset()

	Listings() []models.Listing
	Reservations() []models.Reservation
	Directory() []models.DirectoryEntry
	Loading() bool
	Err() error
	// Stale reports whether the cache was restored from the local snapshot
	// because the server was unreachable, and when that snapshot was taken.
	Stale() (savedAt time.Time, stale bool)

	CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error)
	UpdateListing(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error)
	UpdateListingStatus(ctx context.Context, id models.ID, status models.ListingStatus) (models.Listing, error)
	DeleteListing(ctx context.Context, id models.ID) error

	Reserve(ctx context.Context, listingID models.ID, comment string) (models.Reservation, error)
	CancelReservation(ctx context.Context, id models.ID) (models.Reservation, error)
	ConfirmCollection(ctx context.Context, id models.ID) (models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id models.ID, status models.ReservationStatus) (models.Reservation, error)

	SearchListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	AvailableListings() []models.Listing
	CollectableListings(now time.Time) []models.Listing
	UrgentListings() []models.Listing
	ListingsByOwner(ownerID models.ID) []models.Listing
	ActiveReservationsFor(userID models.ID) []models.Reservation
	ReservationsForListing(listingID models.ID) []models.Reservation
	ImpactSummary(ctx context.Context) models.ImpactSummary
}

type sessionKey struct {
	token string
	role  models.Role
}

type domainStore struct {
	client        client.Client
	db            *sql.DB
	log           logging.Logger
	co2PerListing decimal.Decimal
	now           func() time.Time

	mu           sync.RWMutex
	session      models.Session
	loadedFor    sessionKey
	listings     []models.Listing
	reservations []models.Reservation
	directory    []models.DirectoryEntry
	loading      bool
	err          error
	stale        bool
	savedAt      time.Time
}

// NewDomainStore builds an empty store. A zero co2PerListing selects
// DefaultCO2PerListingKg. With a nil db no offline snapshot is kept.
func NewDomainStore(c client.Client, db *sql.DB, co2PerListing decimal.Decimal, log logging.Logger) DomainStore {
	if log == nil {
		log = logging.Nop()
	}
	if co2PerListing.IsZero() {
		co2PerListing = DefaultCO2PerListingKg
	}
	return &domainStore{
		client:        c,
		db:            db,
		log:           log.With("component", "domain"),
		co2PerListing: co2PerListing,
		now:           time.Now,
	}
}

// OnSessionChange is meant to be subscribed to the SessionStore. It reloads
// everything when (token, role) becomes a new non-empty pair and drops the
// cache when the session goes away. A first load that cannot reach the
// server falls back to the offline snapshot.
func (d *domainStore) OnSessionChange(ctx context.Context, sess models.Session) {
	if sess.State() == models.StateInitializing {
		return
	}
	if !sess.Authenticated() || !sess.Role.Valid() {
		d.mu.Lock()
		d.session = sess
		d.mu.Unlock()
		d.Reset()
		if !sess.Authenticated() {
			d.dropSnapshot(ctx)
		}
		return
	}

	key := sessionKey{token: sess.Token, role: sess.Role}

	d.mu.Lock()
	d.session = sess
	same := d.loadedFor == key
	d.loadedFor = key
	d.mu.Unlock()

	if same {
		return
	}
	if err := d.Refresh(ctx); err != nil {
		d.log.Warn(ctx, "initial load failed", "error", err)
		if errors.Is(err, client.ErrUnavailable) {
			d.restoreSnapshot(ctx, sess)
		}
	}
}

// Reset drops every cached entity.
func (d *domainStore) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadedFor = sessionKey{}
	d.listings = nil
	d.reservations = nil
	d.directory = nil
	d.loading = false
	d.err = nil
	d.stale = false
	d.savedAt = time.Time{}
}

// Refresh fetches listings, reservations and the counterpart directory
// concurrently. The first failure fails the whole batch and the cache is
// left untouched; otherwise the three collections are replaced together.
func (d *domainStore) Refresh(ctx context.Context) error {
	d.mu.Lock()
	sess := d.session
	key := sessionKey{token: sess.Token, role: sess.Role}
	if !sess.Authenticated() || !sess.Role.Valid() {
		d.mu.Unlock()
		return common.ErrNotAuthenticated
	}
	d.loading = true
	d.err = nil
	d.mu.Unlock()

	var (
		listings     []models.Listing
		reservations []models.Reservation
		directory    []models.DirectoryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = d.client.ListListings(gctx, models.ListingFilter{})
		if err != nil {
			return fmt.Errorf("list listings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reservations, err = d.client.ListReservations(gctx)
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sess.Role == models.RoleAssociation {
			directory, err = d.client.ListRestaurants(gctx)
		} else {
			directory, err = d.client.ListAssociations(gctx)
		}
		if err != nil {
			return fmt.Errorf("list %ss: %w", sess.Role.Counterpart(), err)
		}
		return nil
	})
	err := g.Wait()

	d.mu.Lock()
	current := sessionKey{token: d.session.Token, role: d.session.Role}
	if current != key {
		// The session moved on while the batch was in flight.
		d.loading = false
		d.mu.Unlock()
		return nil
	}

	d.loading = false
	if err != nil {
		d.err = err
		d.mu.Unlock()
		return err
	}

	// The snapshot below encodes the fetched slices without the lock.
	d.listings = clone(listings)
	d.reservations = clone(reservations)
	d.directory = clone(directory)
	d.stale = false
	d.savedAt = time.Time{}
	d.mu.Unlock()

	d.log.Debug(ctx, "cache refreshed", "listings", len(listings),
		"reservations", len(reservations), "directory", len(directory))
	d.saveSnapshot(ctx, sess, listings, reservations, directory)
	return nil
}

func (d *domainStore) Listings() []models.Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.listings)
}

func (d *domainStore) Reservations() []models.Reservation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.reservations)
}

func (d *domainStore) Directory() []models.DirectoryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.directory)
}

func (d *domainStore) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

func (d *domainStore) Stale() (time.Time, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.savedAt, d.stale
}

// Err is the error of the last failed Refresh, nil after a success.
func (d *domainStore) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

// requireRole returns the current session when it is authenticated as role.
func (d *domainStore) requireRole(role models.Role) (models.Session, error) {
	d.mu.RLock()
	sess := d.session
	d.mu.RUnlock()

	if !sess.Authenticated() {
		return sess, common.ErrNotAuthenticated
	}
	if role != models.RoleNone && sess.Role != role {
		return sess, invalid("role", fmt.Sprintf("only %ss can do this", role))
	}
	return sess, nil
}

func (d *domainStore) cachedListing(id models.ID) (models.Listing, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := indexOf(d.listings, func(l models.Listing) bool { return l.ID == id })
	if i < 0 {
		return models.Listing{}, false
	}
	return d.listings[i], true
}

func (d *domainStore) cachedReservation(id models.ID) (models.Reservation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := indexOf(d.reservations, func(r models.Reservation) bool { return r.ID == id })
	if i < 0 {
		return models.Reservation{}, false
	}
	return d.reservations[i], true
}

// upsertListing replaces the listing with the same ID or appends it.
// Callers hold d.mu.
func (d *domainStore) upsertListing(l models.Listing) {
	if i := indexOf(d.listings, func(c models.Listing) bool { return c.ID == l.ID }); i >= 0 {
		d.listings[i] = l
		return
	}
	d.listings = append(d.listings, l)
}

// setListingStatus is the reservation-to-listing cascade. Callers hold d.mu.
func (d *domainStore) setListingStatus(id models.ID, status models.ListingStatus) {
	if i := indexOf(d.listings, func(c models.Listing) bool { return c.ID == id }); i >= 0 {
		d.listings[i].Status = status
	}
}

// upsertReservation replaces the reservation with the same ID or appends it.
// Callers hold d.mu.
func (d *domainStore) upsertReservation(r models.Reservation) {
	if i := indexOf(d.reservations, func(c models.Reservation) bool { return c.ID == r.ID }); i >= 0 {
		d.reservations[i] = r
		return
	}
	d.reservations = append(d.reservations, r)
}

func (d *domainStore) CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error) {
	sess, err := d.requireRole(models.RoleRestaurant)
	if err != nil {
		return models.Listing{}, err
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Quantity = strings.TrimSpace(draft.Quantity)
	if err := validateStruct(draft); err != nil {
		return models.Listing{}, err
	}

	created, err := d.client.CreateListing(ctx, draft)
	if err != nil {
		d.log.Warn(ctx, "create listing failed", "error", err)
		return models.Listing{}, err
	}
	if created.Status == "" {
		created.Status = models.ListingPending
	}
	if created.OwnerID == "" {
		created.OwnerID = sess.User.ID
	}

	d.mu.Lock()
	d.upsertListing(created)
	d.mu.Unlock()

	d.log.Debug(ctx, "listing created", "listing_id", created.ID)
	return created, nil
}

// UpdateListing edits a listing that is still open. When the server does not
// echo the record the patch is applied to the cached copy.
func (d *domainStore) UpdateListing(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error) {
	if _, err := d.requireRole(models.RoleRestaurant); err != nil {
		return models.Listing{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Listing{}, invalid("title", "must not be empty")
	}
	if patch.Quantity != nil && strings.TrimSpace(*patch.Quantity) == "" {
		return models.Listing{}, invalid("quantity", "must not be empty")
	}
	if err := validateStruct(patch); err != nil {
		return models.Listing{}, err
	}

	cached, ok := d.cachedListing(id)
	if ok && !cached.Status.Open() {
		return models.Listing{}, fmt.Errorf("edit %s listing: %w", cached.Status, common.ErrInvalidTransition)
	}
	if patch.Status != nil {
		if err := d.checkWithdraw(id, *patch.Status); err != nil {
			return models.Listing{}, err
		}
	}

	return d.applyListingPatch(ctx, id, patch)
}

// UpdateListingStatus withdraws an open listing by marking it expired. The
// reserved, completed and back-to-pending moves belong to Reserve,
// ConfirmCollection and CancelReservation, which keep the reservation in step.
func (d *domainStore) UpdateListingStatus(ctx context.Context, id models.ID, status models.ListingStatus) (models.Listing, error) {
	if err := d.checkWithdraw(id, status); err != nil {
		return models.Listing{}, err
	}
	return d.applyListingPatch(ctx, id, models.ListingPatch{Status: &status})
}

// checkWithdraw allows only the owning restaurant to move its cached listing
// from open to expired.
func (d *domainStore) checkWithdraw(id models.ID, status models.ListingStatus) error {
	sess, err := d.requireRole(models.RoleRestaurant)
	if err != nil {
		return err
	}
	cached, ok := d.cachedListing(id)
	if !ok {
		return fmt.Errorf("listing %s: %w", id, common.ErrNotFound)
	}
	if cached.OwnerID != sess.User.ID {
		return invalid("listing", "only its restaurant can change its status")
	}
	if status != models.ListingExpired || !models.CanTransition(cached.Status, status) {
		return fmt.Errorf("%s -> %s: %w", cached.Status, status, common.ErrInvalidTransition)
	}
	return nil
}

func (d *domainStore) applyListingPatch(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error) {
	updated, err := d.client.UpdateListing(ctx, id, patch)
	if err != nil {
		d.log.Warn(ctx, "update listing failed", "listing_id", id, "error", err)
		return models.Listing{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if updated.ID == "" {
		i := indexOf(d.listings, func(c models.Listing) bool { return c.ID == id })
		if i < 0 {
			return models.Listing{ID: id}, nil
		}
		updated = applyPatch(d.listings[i], patch)
	}
	d.upsertListing(updated)
	return updated, nil
}

// DeleteListing removes a listing that is still open.
func (d *domainStore) DeleteListing(ctx context.Context, id models.ID) error {
	if _, err := d.requireRole(models.RoleRestaurant); err != nil {
		return err
	}
	if cached, ok := d.cachedListing(id); ok && !cached.Status.Open() {
		return fmt.Errorf("delete %s listing: %w", cached.Status, common.ErrInvalidTransition)
	}

	if err := d.client.DeleteListing(ctx, id); err != nil {
		d.log.Warn(ctx, "delete listing failed", "listing_id", id, "error", err)
		return err
	}

	d.mu.Lock()
	d.listings = remove(d.listings, func(l models.Listing) bool { return l.ID == id })
	d.mu.Unlock()
	return nil
}

// Reserve claims an open listing for the signed-in association.
func (d *domainStore) Reserve(ctx context.Context, listingID models.ID, comment string) (models.Reservation, error) {
	sess, err := d.requireRole(models.RoleAssociation)
	if err != nil {
		return models.Reservation{}, err
	}
	listing, ok := d.cachedListing(listingID)
	if !ok {
		return models.Reservation{}, fmt.Errorf("listing %s: %w", listingID, common.ErrNotFound)
	}
	if !listing.Status.Open() {
		return models.Reservation{}, fmt.Errorf("reserve %s listing: %w", listing.Status, common.ErrInvalidTransition)
	}

	created, err := d.client.CreateReservation(ctx, models.ReservationDraft{ListingID: listingID, Comment: comment})
	if err != nil {
		d.log.Warn(ctx, "reserve failed", "listing_id", listingID, "error", err)
		return models.Reservation{}, err
	}
	if created.Status == "" {
		created.Status = models.ReservationPending
	}
	if created.ListingID == "" {
		created.ListingID = listingID
	}
	if created.AssociationID == "" {
		created.AssociationID = sess.User.ID
	}

	d.mu.Lock()
	d.upsertReservation(created)
	d.setListingStatus(listingID, models.ListingReserved)
	d.mu.Unlock()

	d.log.Debug(ctx, "listing reserved", "listing_id", listingID, "reservation_id", created.ID)
	return created, nil
}

// CancelReservation releases the listing back to pending.
func (d *domainStore) CancelReservation(ctx context.Context, id models.ID) (models.Reservation, error) {
	cached, err := d.pendingReservation(id, models.ReservationCancelled)
	if err != nil {
		return models.Reservation{}, err
	}

	res, err := d.client.CancelReservation(ctx, id)
	if err != nil {
		d.log.Warn(ctx, "cancel reservation failed", "reservation_id", id, "error", err)
		return models.Reservation{}, err
	}
	return d.settleReservation(cached, res, models.ReservationCancelled), nil
}

// ConfirmCollection marks the food as collected and completes the listing.
func (d *domainStore) ConfirmCollection(ctx context.Context, id models.ID) (models.Reservation, error) {
	return d.UpdateReservationStatus(ctx, id, models.ReservationCollected)
}

func (d *domainStore) UpdateReservationStatus(ctx context.Context, id models.ID, status models.ReservationStatus) (models.Reservation, error) {
	if status == models.ReservationCancelled {
		return d.CancelReservation(ctx, id)
	}
	cached, err := d.pendingReservation(id, status)
	if err != nil {
		return models.Reservation{}, err
	}

	res, err := d.client.UpdateReservation(ctx, id, status)
	if err != nil {
		d.log.Warn(ctx, "update reservation failed", "reservation_id", id, "status", status, "error", err)
		return models.Reservation{}, err
	}
	return d.settleReservation(cached, res, status), nil
}

// pendingReservation checks that reservation id may move to status.
func (d *domainStore) pendingReservation(id models.ID, status models.ReservationStatus) (models.Reservation, error) {
	if _, err := d.requireRole(models.RoleNone); err != nil {
		return models.Reservation{}, err
	}
	if status != models.ReservationCollected && status != models.ReservationCancelled {
		return models.Reservation{}, invalid("status", fmt.Sprintf("unknown reservation status %q", status))
	}
	cached, ok := d.cachedReservation(id)
	if !ok {
		return models.Reservation{}, fmt.Errorf("reservation %s: %w", id, common.ErrNotFound)
	}
	if cached.Status != models.ReservationPending {
		return models.Reservation{}, fmt.Errorf("%s -> %s: %w", cached.Status, status, common.ErrInvalidTransition)
	}
	return cached, nil
}

// settleReservation records the server-confirmed reservation and cascades
// the matching status onto its listing.
func (d *domainStore) settleReservation(cached, confirmed models.Reservation, status models.ReservationStatus) models.Reservation {
	if confirmed.ID == "" {
		confirmed = cached
	}
	if confirmed.ListingID == "" {
		confirmed.ListingID = cached.ListingID
	}
	confirmed.Status = status

	d.mu.Lock()
	defer d.mu.Unlock()

	d.upsertReservation(confirmed)
	if ls, ok := status.ListingStatusAfter(); ok {
		d.setListingStatus(confirmed.ListingID, ls)
	}
	return confirmed
}

// SearchListings queries the server directly; the cache is not touched.
func (d *domainStore) SearchListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	found, err := d.client.ListListings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return nonNil(found), nil
}

// ImpactSummary prefers the server figures and falls back to an estimate
// from the cache: completed listings times the per-listing CO2 constant, and
// distinct associations with a collected reservation.
func (d *domainStore) ImpactSummary(ctx context.Context) models.ImpactSummary {
	stats, err := d.client.GetStats(ctx)
	if err == nil {
		return stats
	}
	if !errors.Is(err, context.Canceled) {
		d.log.Warn(ctx, "stats unavailable, estimating locally", "error", err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	completed := 0
	for _, l := range d.listings {
		if l.Status == models.ListingCompleted {
			completed++
		}
	}

	collectors := map[models.ID]struct{}{}
	for _, r := range d.reservations {
		if r.Status == models.ReservationCollected && r.AssociationID != "" {
			collectors[r.AssociationID] = struct{}{}
		}
	}

	return models.ImpactSummary{
		CompletedCount: completed,
		CollectorCount: len(collectors),
		CO2Kg:          decimal.NewFromInt(int64(completed)).Mul(d.co2PerListing),
		Estimated:      true,
	}
}

func applyPatch(l models.Listing, p models.ListingPatch) models.Listing {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Quantity != nil {
		l.Quantity = *p.Quantity
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Deadline != nil {
		l.Deadline = *p.Deadline
	}
	if p.Urgent != nil {
		l.Urgent = *p.Urgent
	}
	if p.Allergens != nil {
		l.Allergens = append([]string(nil), p.Allergens...)
	}
	if p.Temperature != nil {
		l.Temperature = *p.Temperature
	}
	if p.Categories != nil {
		l.Categories = append([]string(nil), p.Categories...)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	return l
}
