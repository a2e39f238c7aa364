package gateways

import (
	"errors"
	"testing"

	"github.com/aldeiamar/booking-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCredentialCacheReadThrough(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.FiscalCredential{})

	db.Create(&models.FiscalCredential{ListingID: "lst_1", APIKey: "key-one", IssuedBy: "ops@aldeiamar.pt"})

	cache := NewCredentialCache(db)

	key, err := cache.APIKey("lst_1")
	if err != nil {
		t.Fatalf("APIKey returned error: %v", err)
	}
	if key != "key-one" {
		t.Errorf("expected key-one, got %q", key)
	}

	// A rotated key is not observed until the cache is invalidated.
	db.Model(&models.FiscalCredential{}).Where("listing_id = ?", "lst_1").Update("api_key", "key-two")

	key, err = cache.APIKey("lst_1")
	if err != nil {
		t.Fatalf("APIKey returned error: %v", err)
	}
	if key != "key-one" {
		t.Errorf("expected cached key-one before invalidation, got %q", key)
	}

	cache.Invalidate("lst_1")

	key, err = cache.APIKey("lst_1")
	if err != nil {
		t.Fatalf("APIKey returned error: %v", err)
	}
	if key != "key-two" {
		t.Errorf("expected key-two after invalidation, got %q", key)
	}
}

func TestCredentialCacheMissingListing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.FiscalCredential{})

	cache := NewCredentialCache(db)

	if _, err := cache.APIKey("lst_missing"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}
