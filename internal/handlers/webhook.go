package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/orders"
	"github.com/sirupsen/logrus"
)

const maxWebhookBody = 1 << 20

// WebhookHandler consumes signed asynchronous payment events and drives
// the PMS state transitions that hang off a payment outcome. No retry
// queue exists here: a non-2xx answer makes the payment gateway redeliver.
type WebhookHandler struct {
	controller *orders.Controller
	pms        gateways.ReservationGateway
	secret     string
	log        *logrus.Entry
}

func NewWebhookHandler(controller *orders.Controller, pms gateways.ReservationGateway, secret string, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		controller: controller,
		pms:        pms,
		secret:     secret,
		log:        log.WithField("component", "payment_webhook"),
	}
}

func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	event, err := gateways.ConstructWebhookEvent(payload, r.Header.Get("Payment-Signature"), h.secret, gateways.DefaultWebhookTolerance)
	if err != nil {
		h.log.WithError(err).Warn("rejected webhook delivery")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case gateways.EventPaymentSucceeded:
		err = h.paymentSucceeded(r, event)
	case gateways.EventPaymentFailed:
		err = h.paymentFailed(r, event)
	default:
		// Unsubscribed event kinds are acknowledged and dropped.
	}
	if err != nil {
		h.log.WithField("event", event.ID).WithError(err).Error("webhook processing failed, gateway will redeliver")
		http.Error(w, "processing failed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"received": true}`))
}

func (h *WebhookHandler) paymentSucceeded(r *http.Request, event *gateways.WebhookEvent) error {
	order, err := h.controller.FindByPaymentIntent(r.Context(), event.PaymentIntentID)
	if errors.Is(err, orders.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	for _, transactionID := range order.TransactionIDs {
		if err := h.pms.UpdateTransaction(r.Context(), transactionID, true, today, "payment confirmed by gateway"); err != nil {
			return err
		}
	}
	for _, reservationID := range order.ReservationIDs {
		if err := h.pms.UpdateReservationStatus(r.Context(), reservationID, gateways.ReservationStatusAccepted); err != nil {
			return err
		}
	}
	return nil
}

func (h *WebhookHandler) paymentFailed(r *http.Request, event *gateways.WebhookEvent) error {
	order, err := h.controller.FindByPaymentIntent(r.Context(), event.PaymentIntentID)
	if errors.Is(err, orders.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if ok := h.controller.DeleteOrder(r.Context(), order, "", gateways.ReservationStatusDenied); !ok {
		return errors.New("automatic order teardown failed")
	}
	return nil
}
