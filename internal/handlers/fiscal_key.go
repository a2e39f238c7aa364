package handlers

import (
	"context"
	"errors"

	"github.com/aldeiamar/booking-api/internal/auth"
	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type FiscalKeyHandler struct {
	db    *gorm.DB
	cache *gateways.CredentialCache
	auth  *auth.Handler
}

func NewFiscalKeyHandler(db *gorm.DB, cache *gateways.CredentialCache, authHandler *auth.Handler) *FiscalKeyHandler {
	return &FiscalKeyHandler{db: db, cache: cache, auth: authHandler}
}

type SetFiscalKeyInput struct {
	auth.AuthInput
	ListingID string `path:"listing"`
	Body      struct {
		APIKey string `json:"api_key" minLength:"1" doc:"Fiscal authority API key for this listing"`
	}
}

type SetFiscalKeyOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleSet stores or rotates the fiscal credential for one listing and
// drops the cached copy so the next job run reads the new key.
func (h *FiscalKeyHandler) HandleSet(ctx context.Context, input *SetFiscalKeyInput) (*SetFiscalKeyOutput, error) {
	actor, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var credential models.FiscalCredential
	err = h.db.WithContext(ctx).Where("listing_id = ?", input.ListingID).First(&credential).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error500InternalServerError("Failed to load credential")
	}

	credential.ListingID = input.ListingID
	credential.APIKey = input.Body.APIKey
	credential.IssuedBy = actor
	if err := h.db.WithContext(ctx).Save(&credential).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to store credential")
	}
	h.cache.Invalidate(input.ListingID)

	res := &SetFiscalKeyOutput{}
	res.Body.Message = "Fiscal key stored"
	return res, nil
}
