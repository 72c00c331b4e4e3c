package domain

import (
	"errors"
	"time"
)

// ErrRestaurantNotFound is returned by repositories when no record matches.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// Restaurant is the persisted restaurant record. ID is empty until the store
// assigns one on insert; Country, Timezone and Coordinates are always derived
// from enrichment, never taken from the caller.
type Restaurant struct {
	ID          string
	Name        string
	Address     string
	City        string
	Country     string
	Phone       string
	Timezone    string
	Coordinates Coordinates
	CreatedAt   time.Time
}

// HasID reports whether the record has been persisted.
func (r Restaurant) HasID() bool {
	return r.ID != ""
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// PhoneValidation is the result of validating a phone number upstream.
type PhoneValidation struct {
	Valid     bool
	Country   string
	Timezones []string
}

// WorldTime carries the formatted local datetime for a timezone.
type WorldTime struct {
	Datetime string
}

// Weather carries the current temperature at a coordinate pair.
type Weather struct {
	Temperature float64
}
