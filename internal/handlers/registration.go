package handlers

import (
	"context"
	"errors"

	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegistrationHandler is the guest-facing data-entry surface for traveller
// documents. Knowing the booking reference is the access capability here;
// the fiscal sync job picks the records up asynchronously.
type RegistrationHandler struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewRegistrationHandler(db *gorm.DB) *RegistrationHandler {
	return &RegistrationHandler{db: db, validate: validator.New()}
}

type GetRegistrationInput struct {
	BookingRef string `path:"ref" doc:"Booking reference"`
	ListingID  string `query:"listing_id" doc:"Listing id, used when the record is created on first read"`
}

type RegistrationOutput struct {
	Body models.GuestRegistration
}

// HandleGet returns the registration for a booking, creating it lazily on
// first read.
func (h *RegistrationHandler) HandleGet(ctx context.Context, input *GetRegistrationInput) (*RegistrationOutput, error) {
	var registration models.GuestRegistration
	err := h.db.WithContext(ctx).Where("booking_ref = ?", input.BookingRef).First(&registration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		registration = models.GuestRegistration{BookingRef: input.BookingRef, ListingID: input.ListingID}
		if err := h.db.WithContext(ctx).Create(&registration).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to create registration")
		}
		return &RegistrationOutput{Body: registration}, nil
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load registration")
	}
	return &RegistrationOutput{Body: registration}, nil
}

type UpdateRegistrationInput struct {
	BookingRef string `path:"ref" doc:"Booking reference"`
	Body       struct {
		Travellers []models.Traveller `json:"travellers"`
	}
}

// HandleUpdate replaces the traveller list. The list freezes once a sync
// attempt ran; the fiscal authority already holds those travellers.
func (h *RegistrationHandler) HandleUpdate(ctx context.Context, input *UpdateRegistrationInput) (*RegistrationOutput, error) {
	for _, traveller := range input.Body.Travellers {
		if err := h.validate.Struct(traveller); err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid traveller record: " + err.Error())
		}
	}

	var registration models.GuestRegistration
	err := h.db.WithContext(ctx).Where("booking_ref = ?", input.BookingRef).First(&registration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error404NotFound("Registration not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load registration")
	}

	if registration.Synced {
		return nil, huma.Error409Conflict("Registration already submitted")
	}

	registration.Travellers = datatypes.NewJSONSlice(input.Body.Travellers)
	if err := h.db.WithContext(ctx).Save(&registration).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to store travellers")
	}
	return &RegistrationOutput{Body: registration}, nil
}
