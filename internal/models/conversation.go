package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChatStatusOpen   = "open"
	ChatStatusClosed = "closed"

	SenderGuest = "guest"
	SenderAdmin = "admin"
)

// Chat is one support conversation, unique per PMS reservation.
type Chat struct {
	gorm.Model
	ReservationID string     `json:"reservation_id" gorm:"uniqueIndex"`
	GuestID       string     `json:"guest_id"`
	Status        string     `json:"status"`
	LastMessage   string     `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadCount   int        `json:"unread_count"`
	AutoSynced    bool       `json:"auto_synced"`
}

// ChatMessage is one message inside a chat. ProviderMessageID is the PMS
// inbox id and deduplicates merges: a (chat, provider id) pair is inserted
// at most once.
type ChatMessage struct {
	gorm.Model
	ChatID            uint      `json:"chat_id" gorm:"index:idx_chat_provider,unique,priority:1"`
	ProviderMessageID string    `json:"provider_message_id" gorm:"index:idx_chat_provider,unique,priority:2"`
	Sender            string    `json:"sender"`
	Body              string    `json:"body"`
	Read              bool      `json:"read"`
	SentAt            time.Time `json:"sent_at"`
}
