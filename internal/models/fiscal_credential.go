package models

import (
	"gorm.io/gorm"
)

// FiscalCredential is the per-listing API key for the fiscal authority
// integration. Shared read access by all sync jobs for the listing.
type FiscalCredential struct {
	gorm.Model
	ListingID string `json:"listing_id" gorm:"uniqueIndex"`
	APIKey    string `json:"api_key"`
	IssuedBy  string `json:"issued_by"`
}
