package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

type stubRunner struct {
	err  error
	runs int
}

func (s *stubRunner) Run(ctx context.Context) error {
	s.runs++
	return s.err
}

func TestSyncTriggerRunsJob(t *testing.T) {
	inbox := &stubRunner{}
	handler := NewSyncHandler(inbox, &stubRunner{}, &stubRunner{}, logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/sync/inbox", nil)
	rec := httptest.NewRecorder()
	handler.HandleInboxSync(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"ok": true}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if inbox.runs != 1 {
		t.Errorf("expected 1 run, got %d", inbox.runs)
	}
}

func TestSyncTriggerSignalsRetryOnFailure(t *testing.T) {
	fiscal := &stubRunner{err: errors.New("upstream down")}
	handler := NewSyncHandler(&stubRunner{}, fiscal, &stubRunner{}, logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/sync/fiscal", nil)
	rec := httptest.NewRecorder()
	handler.HandleFiscalSync(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("a failed run must answer 5xx so the scheduler retries, got %d", rec.Code)
	}
}
