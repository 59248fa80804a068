package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "saveeat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	require.NoError(t, err)
	return v
}

func countMeta(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

func networkErr(method, path string) error {
	return &client.NetworkError{Method: method, Path: path, Err: errors.New("connection refused")}
}

func apiErr(status int, msg string) error {
	return &client.APIError{Method: "POST", Path: "/x", StatusCode: status, Message: msg}
}

// ---- fake client ----

// fakeClient implements client.Client for store tests. Each method returns
// its configured result and records its name.
type fakeClient struct {
	mu    sync.Mutex
	token string
	calls []string

	LoginRet    *client.AuthResponse
	LoginErr    error
	RegisterRet *client.AuthResponse
	RegisterErr error
	LogoutErr   error

	ProfileRet        models.User
	ProfileErr        error
	UpdateProfileRet  models.User
	UpdateProfileErr  error
	LastProfileUpdate client.ProfileUpdate

	ListingsRet      []models.Listing
	ListingsErr      error
	LastFilter       models.ListingFilter
	CreateListingRet models.Listing
	CreateListingErr error
	UpdateListingRet models.Listing
	UpdateListingErr error
	DeleteListingErr error

	ReservationsRet       []models.Reservation
	ReservationsErr       error
	CreateReservationRet  models.Reservation
	CreateReservationErr  error
	UpdateReservationRet  models.Reservation
	UpdateReservationErr  error
	CancelReservationRet  models.Reservation
	CancelReservationErr  error
	LastReservationStatus models.ReservationStatus
	LastReservationDraft  models.ReservationDraft
	RestaurantsRet        []models.DirectoryEntry
	RestaurantsErr        error
	AssociationsRet       []models.DirectoryEntry
	AssociationsErr       error
	StatsRet              models.ImpactSummary
	StatsErr              error
	UploadErr             error
	LastUpload            client.DocumentPart
	LastUploadContent     []byte
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Called(name string) bool {
	for _, c := range f.Calls() {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeClient) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	f.record("Login")
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, draft models.SignUpDraft) (*client.AuthResponse, error) {
	f.record("Register")
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

func (f *fakeClient) GetProfile(ctx context.Context) (models.User, error) {
	f.record("GetProfile")
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, update client.ProfileUpdate) (models.User, error) {
	f.record("UpdateProfile")
	f.LastProfileUpdate = update
	return f.UpdateProfileRet, f.UpdateProfileErr
}

func (f *fakeClient) ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	f.record("ListListings")
	f.mu.Lock()
	f.LastFilter = filter
	f.mu.Unlock()
	if f.ListingsErr != nil {
		return nil, f.ListingsErr
	}
	return append([]models.Listing(nil), f.ListingsRet...), nil
}

func (f *fakeClient) CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error) {
	f.record("CreateListing")
	return f.CreateListingRet, f.CreateListingErr
}

func (f *fakeClient) UpdateListing(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error) {
	f.record("UpdateListing")
	return f.UpdateListingRet, f.UpdateListingErr
}

func (f *fakeClient) DeleteListing(ctx context.Context, id models.ID) error {
	f.record("DeleteListing")
	return f.DeleteListingErr
}

func (f *fakeClient) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	f.record("ListReservations")
	if f.ReservationsErr != nil {
		return nil, f.ReservationsErr
	}
	return append([]models.Reservation(nil), f.ReservationsRet...), nil
}

func (f *fakeClient) CreateReservation(ctx context.Context, draft models.ReservationDraft) (models.Reservation, error) {
	f.record("CreateReservation")
	f.LastReservationDraft = draft
	return f.CreateReservationRet, f.CreateReservationErr
}

func (f *fakeClient) UpdateReservation(ctx context.Context, id models.ID, status models.ReservationStatus) (models.Reservation, error) {
	f.record("UpdateReservation")
	f.LastReservationStatus = status
	return f.UpdateReservationRet, f.UpdateReservationErr
}

func (f *fakeClient) CancelReservation(ctx context.Context, id models.ID) (models.Reservation, error) {
	f.record("CancelReservation")
	return f.CancelReservationRet, f.CancelReservationErr
}

func (f *fakeClient) ListRestaurants(ctx context.Context) ([]models.DirectoryEntry, error) {
	f.record("ListRestaurants")
	return f.RestaurantsRet, f.RestaurantsErr
}

func (f *fakeClient) ListAssociations(ctx context.Context) ([]models.DirectoryEntry, error) {
	f.record("ListAssociations")
	return f.AssociationsRet, f.AssociationsErr
}

func (f *fakeClient) GetStats(ctx context.Context) (models.ImpactSummary, error) {
	f.record("GetStats")
	return f.StatsRet, f.StatsErr
}

func (f *fakeClient) UploadDocument(ctx context.Context, doc client.DocumentPart) error {
	f.record("UploadDocument")
	f.LastUpload = doc
	if doc.Content != nil {
		f.LastUploadContent, _ = io.ReadAll(doc.Content)
	}
	return f.UploadErr
}

var _ client.Client = (*fakeClient)(nil)
