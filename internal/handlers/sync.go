package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type syncRunner interface {
	Run(ctx context.Context) error
}

// SyncHandler exposes the reconciliation jobs to the external scheduler.
// Each endpoint runs one job to completion inside the request; the status
// code tells the scheduler whether to fire again early.
type SyncHandler struct {
	inbox    syncRunner
	fiscal   syncRunner
	invoices syncRunner
	log      *logrus.Entry
}

func NewSyncHandler(inbox, fiscal, invoices syncRunner, log *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		inbox:    inbox,
		fiscal:   fiscal,
		invoices: invoices,
		log:      log.WithField("component", "sync_triggers"),
	}
}

func (h *SyncHandler) HandleInboxSync(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, "inbox", h.inbox)
}

func (h *SyncHandler) HandleFiscalSync(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, "fiscal", h.fiscal)
}

func (h *SyncHandler) HandleInvoiceSync(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, "invoices", h.invoices)
}

func (h *SyncHandler) trigger(w http.ResponseWriter, r *http.Request, name string, job syncRunner) {
	if err := job.Run(r.Context()); err != nil {
		h.log.WithField("trigger", name).WithError(err).Error("sync run failed")
		http.Error(w, "sync failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok": true}`))
}
