package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Notifier alerts operators about reconciliation problems that need a
// human retry (no automatic compensation exists for them).
type Notifier interface {
	NotifyReconciliationFailure(subject, detail string) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyReconciliationFailure(subject, detail string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("⚠️ **Reconciliation failure**\n**What:** %s\n**Detail:** %s\n**Action:** operator retry required", subject, detail)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
