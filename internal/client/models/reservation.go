package models

// ReservationStatus is the lifecycle position of an association's claim.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCollected ReservationStatus = "collected"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ListingStatusAfter gives the status the reserved listing takes when its
// reservation reaches s.
func (s ReservationStatus) ListingStatusAfter() (ListingStatus, bool) {
	switch s {
	case ReservationPending:
		return ListingReserved, true
	case ReservationCollected:
		return ListingCompleted, true
	case ReservationCancelled:
		return ListingPending, true
	default:
		return "", false
	}
}

type Reservation struct {
	ID            ID                `json:"id"`
	ListingID     ID                `json:"listing_id"`
	AssociationID ID                `json:"association_id"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     Timestamp         `json:"created_at"`
}

// ReservationDraft is the payload of POST /reservations.
type ReservationDraft struct {
	ListingID ID     `json:"listing_id"`
	Comment   string `json:"comment,omitempty"`
}
