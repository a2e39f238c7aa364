package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Traveller is one guest document awaiting fiscal submission. Dates use
// the 2006-01-02 layout.
type Traveller struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	DocumentType     string `json:"document_type" validate:"required"`
	DocumentNumber   string `json:"document_number" validate:"required"`
	DocumentCountry  string `json:"document_country" validate:"required,len=2"`
	Nationality      string `json:"nationality" validate:"required,len=2"`
	BirthDate        string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	CheckIn          string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut         string `json:"check_out" validate:"required,datetime=2006-01-02"`
	ResidenceCountry string `json:"residence_country" validate:"required,len=2"`
	ResidenceCity    string `json:"residence_city"`
}

// GuestRegistration tracks the fiscal submission state of one booking's
// travellers. Succeeded is only meaningful once Synced is true; the
// traveller list is frozen after a sync attempt.
type GuestRegistration struct {
	gorm.Model
	BookingRef string                         `json:"booking_ref" gorm:"uniqueIndex"`
	ListingID  string                         `json:"listing_id" gorm:"index"`
	Travellers datatypes.JSONSlice[Traveller] `json:"travellers"`
	Synced     bool                           `json:"synced"`
	Succeeded  bool                           `json:"succeeded"`
}
