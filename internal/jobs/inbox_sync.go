package jobs

import (
	"context"
	"errors"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InboxSyncJob merges PMS inbox threads into the conversation store. It
// backs both the scheduled pass over open chats and the on-demand action
// for a single reservation; both are idempotent because messages
// deduplicate on the provider message id.
type InboxSyncJob struct {
	db  *gorm.DB
	pms gateways.ReservationGateway
	log *logrus.Entry
}

func NewInboxSyncJob(db *gorm.DB, pms gateways.ReservationGateway, log *logrus.Logger) *InboxSyncJob {
	return &InboxSyncJob{
		db:  db,
		pms: pms,
		log: log.WithField("job", "inbox_sync"),
	}
}

func (j *InboxSyncJob) Run(ctx context.Context) error {
	var chats []models.Chat
	if err := j.db.WithContext(ctx).Where("status = ?", models.ChatStatusOpen).Find(&chats).Error; err != nil {
		return err
	}

	for _, chat := range chats {
		if err := j.SyncReservation(ctx, chat.ReservationID); err != nil {
			j.log.WithField("reservation", chat.ReservationID).WithError(err).Error("inbox merge failed")
		}
	}
	return nil
}

// SyncReservation merges one reservation's thread. The chat is created on
// first contact, so the on-demand action works for reservations support
// has not opened yet.
func (j *InboxSyncJob) SyncReservation(ctx context.Context, reservationID string) error {
	chat, err := j.findOrCreateChat(ctx, reservationID)
	if err != nil {
		return err
	}

	messages, err := j.pms.GetInboxThread(ctx, reservationID)
	if err != nil {
		return err
	}

	newGuestMessages := 0
	var newest *models.ChatMessage
	for _, message := range messages {
		var count int64
		err := j.db.WithContext(ctx).Model(&models.ChatMessage{}).
			Where("chat_id = ? AND provider_message_id = ?", chat.ID, message.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		sender := models.SenderAdmin
		if message.SenderID == chat.GuestID {
			sender = models.SenderGuest
		}

		stored := models.ChatMessage{
			ChatID:            chat.ID,
			ProviderMessageID: message.ID,
			Sender:            sender,
			Body:              message.Body,
			Read:              sender == models.SenderAdmin,
			SentAt:            message.SentAt,
		}
		if err := j.db.WithContext(ctx).Create(&stored).Error; err != nil {
			return err
		}

		if sender == models.SenderGuest {
			newGuestMessages++
		}
		if newest == nil || stored.SentAt.After(newest.SentAt) {
			latest := stored
			newest = &latest
		}
	}

	chat.UnreadCount += newGuestMessages
	if newest != nil {
		chat.LastMessage = newest.Body
		at := newest.SentAt
		chat.LastMessageAt = &at
	}
	chat.AutoSynced = true
	return j.db.WithContext(ctx).Save(chat).Error
}

func (j *InboxSyncJob) findOrCreateChat(ctx context.Context, reservationID string) (*models.Chat, error) {
	var chat models.Chat
	err := j.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reservation, err := j.pms.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	chat = models.Chat{
		ReservationID: reservationID,
		GuestID:       reservation.GuestID,
		Status:        models.ChatStatusOpen,
	}
	if err := j.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}
