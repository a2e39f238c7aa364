package gateways

import (
	"errors"
	"sync"

	"github.com/aldeiamar/booking-api/internal/models"
	"gorm.io/gorm"
)

var ErrNoCredential = errors.New("no fiscal credential for listing")

// CredentialSource resolves the fiscal API key for a listing.
type CredentialSource interface {
	APIKey(listingID string) (string, error)
}

// CredentialCache is a read-through cache over the fiscal credential
// table. Sync jobs hit it once per booking; Invalidate is called by the
// credential-management action after a key changes.
type CredentialCache struct {
	db   *gorm.DB
	mu   sync.RWMutex
	keys map[string]string
}

func NewCredentialCache(db *gorm.DB) *CredentialCache {
	return &CredentialCache{db: db, keys: make(map[string]string)}
}

func (c *CredentialCache) APIKey(listingID string) (string, error) {
	c.mu.RLock()
	key, ok := c.keys[listingID]
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	var credential models.FiscalCredential
	if err := c.db.Where("listing_id = ?", listingID).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoCredential
		}
		return "", err
	}

	c.mu.Lock()
	c.keys[listingID] = credential.APIKey
	c.mu.Unlock()
	return credential.APIKey, nil
}

func (c *CredentialCache) Invalidate(listingID string) {
	c.mu.Lock()
	delete(c.keys, listingID)
	c.mu.Unlock()
}
