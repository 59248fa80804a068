package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/tidwall/gjson"
)

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	env, err := c.Do(ctx, http.MethodPost, "/login", nil, map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return decodeAuth(env)
}

func (c *HTTPClient) Register(ctx context.Context, draft models.SignUpDraft) (*AuthResponse, error) {
	env, err := c.Do(ctx, http.MethodPost, "/register", nil, draft)
	if err != nil {
		return nil, err
	}
	return decodeAuth(env)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/logout", nil, nil)
	return err
}

func (c *HTTPClient) GetProfile(ctx context.Context) (models.User, error) {
	env, err := c.Do(ctx, http.MethodGet, "/profile", nil, nil)
	if err != nil {
		return models.User{}, err
	}
	return decodeUser(env)
}

// UpdateProfile returns the zero User when the server did not echo the
// updated profile.
func (c *HTTPClient) UpdateProfile(ctx context.Context, update ProfileUpdate) (models.User, error) {
	env, err := c.Do(ctx, http.MethodPut, "/profile", nil, update)
	if err != nil {
		return models.User{}, err
	}
	if isEmptyJSON(env.Data) && isEmptyJSON(env.User) {
		return models.User{}, nil
	}
	return decodeUser(env)
}

func (c *HTTPClient) ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	env, err := c.Do(ctx, http.MethodGet, "/invendus", filter.Values(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Listing](env.Data, "invendus")
}

func (c *HTTPClient) CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error) {
	var l models.Listing
	env, err := c.Do(ctx, http.MethodPost, "/invendus", nil, draft)
	if err != nil {
		return l, err
	}
	ok, err := decodeData(env.Data, &l)
	if err != nil {
		return l, err
	}
	if !ok || l.ID == "" {
		return l, fmt.Errorf("create listing: %w: no record returned", ErrMalformedResponse)
	}
	return l, nil
}

// UpdateListing returns the zero Listing when the server acknowledged the
// change without echoing the record.
func (c *HTTPClient) UpdateListing(ctx context.Context, id models.ID, patch models.ListingPatch) (models.Listing, error) {
	var l models.Listing
	env, err := c.Do(ctx, http.MethodPut, "/invendus/"+url.PathEscape(id.String()), nil, patch)
	if err != nil {
		return l, err
	}
	_, err = decodeData(env.Data, &l)
	return l, err
}

func (c *HTTPClient) DeleteListing(ctx context.Context, id models.ID) error {
	_, err := c.Do(ctx, http.MethodDelete, "/invendus/"+url.PathEscape(id.String()), nil, nil)
	return err
}

func (c *HTTPClient) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	env, err := c.Do(ctx, http.MethodGet, "/reservations", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Reservation](env.Data, "reservations")
}

func (c *HTTPClient) CreateReservation(ctx context.Context, draft models.ReservationDraft) (models.Reservation, error) {
	var r models.Reservation
	env, err := c.Do(ctx, http.MethodPost, "/reservations", nil, draft)
	if err != nil {
		return r, err
	}
	ok, err := decodeData(env.Data, &r)
	if err != nil {
		return r, err
	}
	if !ok || r.ID == "" {
		return r, fmt.Errorf("create reservation: %w: no record returned", ErrMalformedResponse)
	}
	return r, nil
}

func (c *HTTPClient) UpdateReservation(ctx context.Context, id models.ID, status models.ReservationStatus) (models.Reservation, error) {
	var r models.Reservation
	env, err := c.Do(ctx, http.MethodPut, "/reservations/"+url.PathEscape(id.String()), nil, map[string]models.ReservationStatus{"status": status})
	if err != nil {
		return r, err
	}
	_, err = decodeData(env.Data, &r)
	return r, err
}

func (c *HTTPClient) CancelReservation(ctx context.Context, id models.ID) (models.Reservation, error) {
	var r models.Reservation
	env, err := c.Do(ctx, http.MethodPost, "/reservations/"+url.PathEscape(id.String())+"/cancel", nil, nil)
	if err != nil {
		return r, err
	}
	_, err = decodeData(env.Data, &r)
	return r, err
}

func (c *HTTPClient) ListRestaurants(ctx context.Context) ([]models.DirectoryEntry, error) {
	env, err := c.Do(ctx, http.MethodGet, "/restaurants", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.DirectoryEntry](env.Data, "restaurants")
}

func (c *HTTPClient) ListAssociations(ctx context.Context) ([]models.DirectoryEntry, error) {
	env, err := c.Do(ctx, http.MethodGet, "/associations", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.DirectoryEntry](env.Data, "associations")
}

func (c *HTTPClient) GetStats(ctx context.Context) (models.ImpactSummary, error) {
	var s models.ImpactSummary
	env, err := c.Do(ctx, http.MethodGet, "/stats", nil, nil)
	if err != nil {
		return s, err
	}
	ok, err := decodeData(env.Data, &s)
	if err != nil {
		return s, err
	}
	if !ok {
		return s, fmt.Errorf("stats: %w: no data", ErrMalformedResponse)
	}
	return s, nil
}

// decodeAuth reads token and user from the top level of the envelope, or
// from inside data when the backend nests them there.
func decodeAuth(env *Envelope) (*AuthResponse, error) {
	res := &AuthResponse{Token: env.Token}
	userRaw := env.User

	if !isEmptyJSON(env.Data) {
		if res.Token == "" {
			res.Token = gjson.GetBytes(env.Data, "token").String()
		}
		if isEmptyJSON(userRaw) {
			if u := gjson.GetBytes(env.Data, "user"); u.Exists() {
				userRaw = json.RawMessage(u.Raw)
			}
		}
	}

	ok, err := decodeData(userRaw, &res.User)
	if err != nil {
		return nil, err
	}
	if !ok || res.User.ID == "" {
		return nil, fmt.Errorf("auth: %w: no user returned", ErrMalformedResponse)
	}
	return res, nil
}

// decodeUser accepts the profile under "user" or directly as "data".
func decodeUser(env *Envelope) (models.User, error) {
	var u models.User
	raw := env.User
	if isEmptyJSON(raw) {
		raw = env.Data
		if nested := gjson.GetBytes(raw, "user"); !isEmptyJSON(raw) && nested.IsObject() {
			raw = json.RawMessage(nested.Raw)
		}
	}
	ok, err := decodeData(raw, &u)
	if err != nil {
		return u, err
	}
	if !ok || u.ID == "" {
		return u, fmt.Errorf("profile: %w: no user returned", ErrMalformedResponse)
	}
	return u, nil
}
