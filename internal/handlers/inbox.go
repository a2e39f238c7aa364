package handlers

import (
	"context"

	"github.com/aldeiamar/booking-api/internal/auth"
	"github.com/aldeiamar/booking-api/internal/jobs"
	"github.com/danielgtaylor/huma/v2"
)

// InboxHandler is the on-demand counterpart of the scheduled inbox sync,
// used when support opens a reservation's conversation.
type InboxHandler struct {
	inbox *jobs.InboxSyncJob
	auth  *auth.Handler
}

func NewInboxHandler(inbox *jobs.InboxSyncJob, authHandler *auth.Handler) *InboxHandler {
	return &InboxHandler{inbox: inbox, auth: authHandler}
}

type InboxSyncInput struct {
	auth.AuthInput
	ReservationID string `path:"id" doc:"PMS reservation id"`
}

type InboxSyncOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func (h *InboxHandler) HandleSync(ctx context.Context, input *InboxSyncInput) (*InboxSyncOutput, error) {
	if _, err := h.auth.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if err := h.inbox.SyncReservation(ctx, input.ReservationID); err != nil {
		return nil, huma.Error500InternalServerError("Inbox merge failed")
	}

	res := &InboxSyncOutput{}
	res.Body.OK = true
	return res, nil
}
