package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a charge site does not exist.
var ErrNotFound = errors.New("charge site not found")

// ChargeSite is a physical charging location.
//
// TrueLocation is the exact position and stays on the write path: it is never
// serialized. Location is what readers see; it equals TrueLocation when
// IsObfuscated is false.
type ChargeSite struct {
	ID                  string    `json:"id"`
	UserID              int       `json:"user_id"`
	TrueLocation        GeoPoint  `json:"-"`
	Location            GeoPoint  `json:"location"`
	IsObfuscated        bool      `json:"is_obfuscated"`
	ObfuscationDisabled bool      `json:"obfuscation_disabled"`
	IsPrivate           bool      `json:"is_private"` // requires a reservation before use
	IsReserved          bool      `json:"is_reserved"`
	RateOfCharge        float64   `json:"rate_of_charge"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ChargeSiteInput is the caller-supplied state for a create or update.
type ChargeSiteInput struct {
	UserID              int     `json:"user_id"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	ObfuscationDisabled bool    `json:"obfuscation_disabled"`
	Private             bool    `json:"private"`
	Reserved            bool    `json:"reserved"`
	RateOfCharge        float64 `json:"rate_of_charge"`
}

// PublicChargeSite is the record handed to map clients.
type PublicChargeSite struct {
	ID               string  `json:"id"`
	UserID           int     `json:"user_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	ObfuscatedStatus bool    `json:"obfuscated_status"`
	ReservedStatus   bool    `json:"reserved_status"`
	PrivateStatus    bool    `json:"private_status"`
	RateOfCharge     float64 `json:"rate_of_charge"`
}

// Public converts a site to its client-facing record.
func (s ChargeSite) Public() PublicChargeSite {
	return PublicChargeSite{
		ID:               s.ID,
		UserID:           s.UserID,
		Latitude:         s.Location.Lat,
		Longitude:        s.Location.Lon,
		ObfuscatedStatus: s.IsObfuscated,
		ReservedStatus:   s.IsReserved,
		PrivateStatus:    s.IsPrivate,
		RateOfCharge:     s.RateOfCharge,
	}
}

// PublicList converts a slice of sites.
func PublicList(sites []ChargeSite) []PublicChargeSite {
	out := make([]PublicChargeSite, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.Public())
	}
	return out
}

// SiteEventType names a change to a charge site.
type SiteEventType string

const (
	SiteCreated SiteEventType = "created"
	SiteUpdated SiteEventType = "updated"
	SiteDeleted SiteEventType = "deleted"
)

// SiteEvent is broadcast after a successful write. Site is nil for deletions.
type SiteEvent struct {
	Type   SiteEventType     `json:"type"`
	SiteID string            `json:"site_id"`
	Site   *PublicChargeSite `json:"site,omitempty"`
	Time   time.Time         `json:"time"`
}
