package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/sirupsen/logrus"
)

func TestInboxSyncDeduplicatesByProviderID(t *testing.T) {
	db := testDB(t)
	pms := newFakePMS()
	job := NewInboxSyncJob(db, pms, logrus.New())

	chat := models.Chat{ReservationID: "res_1", GuestID: "guest_1", Status: models.ChatStatusOpen}
	db.Create(&chat)
	db.Create(&models.ChatMessage{ChatID: chat.ID, ProviderMessageID: "m1", Sender: models.SenderGuest, Body: "Hello", SentAt: time.Now().Add(-3 * time.Hour)})

	base := time.Now().Add(-2 * time.Hour)
	pms.inbox["res_1"] = []gateways.InboxMessage{
		{ID: "m1", SenderID: "guest_1", Body: "Hello", SentAt: base.Add(-time.Hour)},
		{ID: "m2", SenderID: "guest_1", Body: "Is parking included?", SentAt: base},
		{ID: "m3", SenderID: "host_1", Body: "Yes it is.", SentAt: base.Add(time.Minute)},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Where("chat_id = ?", chat.ID).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 stored messages (1 existing + 2 new), got %d", count)
	}

	var updated models.Chat
	db.First(&updated, chat.ID)
	if updated.UnreadCount != 1 {
		t.Errorf("only the new guest message counts as unread, got %d", updated.UnreadCount)
	}
	if updated.LastMessage != "Yes it is." {
		t.Errorf("preview must come from the chronologically last new message, got %q", updated.LastMessage)
	}
	if !updated.AutoSynced {
		t.Error("automation pass flag must be set")
	}

	var adminMessage models.ChatMessage
	db.Where("provider_message_id = ?", "m3").First(&adminMessage)
	if adminMessage.Sender != models.SenderAdmin || !adminMessage.Read {
		t.Errorf("admin message must be stored read, got sender=%q read=%t", adminMessage.Sender, adminMessage.Read)
	}
	var guestMessage models.ChatMessage
	db.Where("provider_message_id = ?", "m2").First(&guestMessage)
	if guestMessage.Sender != models.SenderGuest || guestMessage.Read {
		t.Errorf("guest message must be stored unread, got sender=%q read=%t", guestMessage.Sender, guestMessage.Read)
	}
}

func TestInboxSyncIsIdempotent(t *testing.T) {
	db := testDB(t)
	pms := newFakePMS()
	job := NewInboxSyncJob(db, pms, logrus.New())

	chat := models.Chat{ReservationID: "res_1", GuestID: "guest_1", Status: models.ChatStatusOpen}
	db.Create(&chat)
	pms.inbox["res_1"] = []gateways.InboxMessage{
		{ID: "m1", SenderID: "guest_1", Body: "Hello", SentAt: time.Now().Add(-time.Hour)},
		{ID: "m2", SenderID: "host_1", Body: "Hi!", SentAt: time.Now().Add(-30 * time.Minute)},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	var afterFirst models.Chat
	db.First(&afterFirst, chat.ID)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Where("chat_id = ?", chat.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected message count unchanged at 2, got %d", count)
	}

	var afterSecond models.Chat
	db.First(&afterSecond, chat.ID)
	if afterSecond.UnreadCount != afterFirst.UnreadCount {
		t.Errorf("unread counter must not change on re-run: %d != %d", afterSecond.UnreadCount, afterFirst.UnreadCount)
	}
}

func TestInboxSyncCreatesChatOnDemand(t *testing.T) {
	db := testDB(t)
	pms := newFakePMS()
	job := NewInboxSyncJob(db, pms, logrus.New())

	pms.reservations["res_9"] = &gateways.Reservation{ID: "res_9", GuestID: "guest_9", Status: gateways.ReservationStatusAccepted}
	pms.inbox["res_9"] = []gateways.InboxMessage{
		{ID: "m1", SenderID: "guest_9", Body: "Early check-in possible?", SentAt: time.Now()},
	}

	if err := job.SyncReservation(context.Background(), "res_9"); err != nil {
		t.Fatalf("SyncReservation returned error: %v", err)
	}

	var chat models.Chat
	if err := db.Where("reservation_id = ?", "res_9").First(&chat).Error; err != nil {
		t.Fatalf("chat was not created: %v", err)
	}
	if chat.GuestID != "guest_9" {
		t.Errorf("chat must record the reservation's guest id, got %q", chat.GuestID)
	}
	if chat.UnreadCount != 1 {
		t.Errorf("expected unread 1, got %d", chat.UnreadCount)
	}
}

func TestInboxSyncSkipsClosedChats(t *testing.T) {
	db := testDB(t)
	pms := newFakePMS()
	job := NewInboxSyncJob(db, pms, logrus.New())

	chat := models.Chat{ReservationID: "res_1", GuestID: "guest_1", Status: models.ChatStatusClosed}
	db.Create(&chat)
	pms.inbox["res_1"] = []gateways.InboxMessage{
		{ID: "m1", SenderID: "guest_1", Body: "Hello", SentAt: time.Now()},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	if count != 0 {
		t.Errorf("closed chats are not merged by the scheduled pass, got %d messages", count)
	}
}
