package client

import (
	"context"
	"io"

	"github.com/saveeat/saveeat-client/internal/client/models"
)

// Client is the remote service contract consumed by the stores.
type Client interface {
	Close() error
	SetToken(token string)

	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, draft models.SignUpDraft) (*AuthResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (models.User, error)

	ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error)
	UpdateListing(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error)
	DeleteListing(ctx context.Context, id models.ID) error

	ListReservations(ctx context.Context) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, draft models.ReservationDraft) (models.Reservation, error)
	UpdateReservation(ctx context.Context, id models.ID, status models.ReservationStatus) (models.Reservation, error)
	CancelReservation(ctx context.Context, id models.ID) (models.Reservation, error)

	ListRestaurants(ctx context.Context) ([]models.DirectoryEntry, error)
	ListAssociations(ctx context.Context) ([]models.DirectoryEntry, error)
	GetStats(ctx context.Context) (models.ImpactSummary, error)

	UploadDocument(ctx context.Context, doc DocumentPart) error
}

// AuthResponse is what /login and /register hand back. Token is empty when
// the service does not auto-authenticate new accounts.
type AuthResponse struct {
	Token string
	User  models.User
}

// ProfileUpdate is the payload of PUT /profile.
type ProfileUpdate struct {
	models.ProfilePatch
	Role models.Role `json:"role,omitempty"`
}

// DocumentPart is one verification document streamed to POST /upload.
type DocumentPart struct {
	FileName    string
	ContentType string
	Content     io.Reader
	Type        models.DocumentType
	Comment     string
}

var _ Client = (*HTTPClient)(nil)
