package models

import (
	"net/url"
	"strconv"
	"time"
)

// ListingStatus is the lifecycle position of a donated-food offer.
type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingAvailable ListingStatus = "available" // legacy synonym of pending
	ListingReserved  ListingStatus = "reserved"
	ListingCompleted ListingStatus = "completed"
	ListingExpired   ListingStatus = "expired"
)

// Open reports whether the listing can still be reserved, edited or deleted.
func (s ListingStatus) Open() bool {
	return s == ListingPending || s == ListingAvailable
}

func (s ListingStatus) normalized() ListingStatus {
	if s == ListingAvailable {
		return ListingPending
	}
	return s
}

var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingPending:  {ListingReserved, ListingExpired, ListingCompleted},
	ListingReserved: {ListingPending, ListingCompleted},
}

// CanTransition reports whether a listing may move from one status to
// another. Completed and expired are terminal.
func CanTransition(from, to ListingStatus) bool {
	from, to = from.normalized(), to.normalized()
	for _, next := range listingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type TemperatureClass string

const (
	TemperatureAmbient TemperatureClass = "ambient"
	TemperatureChilled TemperatureClass = "chilled"
	TemperatureFrozen  TemperatureClass = "frozen"
	TemperatureHot     TemperatureClass = "hot"
)

// Listing is a surplus-food offer published by a restaurant.
type Listing struct {
	ID          ID               `json:"id"`
	OwnerID     ID               `json:"restaurant_id"`
	Title       string           `json:"title"`
	Quantity    string           `json:"quantity"`
	Description string           `json:"description,omitempty"`
	Deadline    Timestamp        `json:"deadline"`
	Urgent      bool             `json:"urgent"`
	Status      ListingStatus    `json:"status"`
	Allergens   []string         `json:"allergens,omitempty"`
	Temperature TemperatureClass `json:"temperature,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
}

// Expired is the read-time expiry flag: the stored status is not rewritten
// when the deadline passes, so callers combine both.
func (l Listing) Expired(now time.Time) bool {
	if l.Status == ListingExpired {
		return true
	}
	return !l.Deadline.IsZero() && l.Deadline.Before(now)
}

// ListingDraft is the payload of POST /invendus.
type ListingDraft struct {
	Title       string           `json:"title" validate:"required,max=120"`
	Quantity    string           `json:"quantity" validate:"required,max=60"`
	Description string           `json:"description,omitempty" validate:"max=2000"`
	Deadline    Timestamp        `json:"deadline"`
	Urgent      bool             `json:"urgent"`
	Allergens   []string         `json:"allergens,omitempty"`
	Temperature TemperatureClass `json:"temperature,omitempty" validate:"omitempty,oneof=ambient chilled frozen hot"`
	Categories  []string         `json:"categories,omitempty"`
	ImageURL    string           `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ListingPatch is the payload of PUT /invendus/{id}; nil fields are omitted.
type ListingPatch struct {
	Title       *string           `json:"title,omitempty" validate:"omitempty,max=120"`
	Quantity    *string           `json:"quantity,omitempty" validate:"omitempty,max=60"`
	Description *string           `json:"description,omitempty"`
	Deadline    *Timestamp        `json:"deadline,omitempty"`
	Urgent      *bool             `json:"urgent,omitempty"`
	Allergens   []string          `json:"allergens,omitempty"`
	Temperature *TemperatureClass `json:"temperature,omitempty" validate:"omitempty,oneof=ambient chilled frozen hot"`
	Categories  []string          `json:"categories,omitempty"`
	Status      *ListingStatus    `json:"status,omitempty"`
}

// ListingFilter narrows GET /invendus through its query string.
type ListingFilter struct {
	Status       ListingStatus
	Category     string
	Urgent       *bool
	RestaurantID ID
	Query        string
}

func (f ListingFilter) Values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Urgent != nil {
		v.Set("urgent", strconv.FormatBool(*f.Urgent))
	}
	if f.RestaurantID != "" {
		v.Set("restaurant_id", string(f.RestaurantID))
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return v
}
