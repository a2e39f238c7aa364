package jobs

import (
	"context"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FiscalSyncJob pushes unsynced guest registrations to the fiscal
// authority. Per-booking atomicity is approximated by a full reset and
// resubmission of every traveller: any failed submission leaves the
// booking unsynced so the next run retries it from scratch, which also
// tolerates the traveller list changing between runs.
type FiscalSyncJob struct {
	db          *gorm.DB
	fiscal      gateways.FiscalGateway
	credentials gateways.CredentialSource
	log         *logrus.Entry
}

func NewFiscalSyncJob(db *gorm.DB, fiscal gateways.FiscalGateway, credentials gateways.CredentialSource, log *logrus.Logger) *FiscalSyncJob {
	return &FiscalSyncJob{
		db:          db,
		fiscal:      fiscal,
		credentials: credentials,
		log:         log.WithField("job", "fiscal_sync"),
	}
}

func (j *FiscalSyncJob) Run(ctx context.Context) error {
	var pending []models.GuestRegistration
	if err := j.db.WithContext(ctx).Where("synced = ?", false).Find(&pending).Error; err != nil {
		return err
	}

	for i := range pending {
		j.syncBooking(ctx, &pending[i])
	}
	return nil
}

func (j *FiscalSyncJob) syncBooking(ctx context.Context, registration *models.GuestRegistration) {
	log := j.log.WithField("booking", registration.BookingRef)

	// Rows created by the registration page start with no travellers;
	// syncing one would freeze the form before the guest ever fills it.
	if len(registration.Travellers) == 0 {
		return
	}

	apiKey, err := j.credentials.APIKey(registration.ListingID)
	if err != nil {
		log.WithError(err).Warn("skipping booking without usable fiscal credential")
		return
	}

	if err := j.fiscal.RemoveAllGuests(ctx, apiKey, registration.BookingRef); err != nil {
		log.WithError(err).Error("guest reset failed, booking left for next run")
		return
	}

	for _, traveller := range registration.Travellers {
		accepted, err := j.fiscal.AddGuest(ctx, apiKey, registration.BookingRef, traveller)
		if err != nil {
			log.WithError(err).Error("traveller submission failed, booking left for next run")
			return
		}
		if !accepted {
			log.WithField("document", traveller.DocumentNumber).Warn("traveller rejected, booking left for next run")
			return
		}
	}

	valid, err := j.fiscal.Validate(ctx, apiKey, registration.BookingRef)
	if err != nil {
		log.WithError(err).Error("validation failed, booking left for next run")
		return
	}

	registration.Synced = true
	registration.Succeeded = valid
	if err := j.db.WithContext(ctx).Save(registration).Error; err != nil {
		log.WithError(err).Error("failed to record sync outcome")
		return
	}
	log.WithField("succeeded", valid).Info("booking synced")
}
