package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aldeiamar/booking-api/internal/config"
	"golang.org/x/oauth2/clientcredentials"
)

// PMSClient talks to the property-management system. The PMS API is
// OAuth2-protected; the client-credentials token source refreshes the
// bearer token transparently.
type PMSClient struct {
	baseURL string
	client  *http.Client
}

func NewPMSClient(cfg *config.Config) *PMSClient {
	oauth := &clientcredentials.Config{
		ClientID:     cfg.PMSClientID,
		ClientSecret: cfg.PMSClientSecret,
		TokenURL:     cfg.PMSTokenURL,
	}
	return &PMSClient{
		baseURL: cfg.PMSBaseURL,
		client:  oauth.Client(context.Background()),
	}
}

func (c *PMSClient) GetReservation(ctx context.Context, reservationID string) (*Reservation, error) {
	var reservation Reservation
	endpoint := fmt.Sprintf("%s/reservations/%s", c.baseURL, url.PathEscape(reservationID))
	if err := doJSON(ctx, c.client, "reservation", http.MethodGet, endpoint, nil, nil, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *PMSClient) UpdateReservationStatus(ctx context.Context, reservationID, status string) error {
	endpoint := fmt.Sprintf("%s/reservations/%s/status", c.baseURL, url.PathEscape(reservationID))
	payload := map[string]string{"status": status}
	return doJSON(ctx, c.client, "reservation", http.MethodPut, endpoint, nil, payload, nil)
}

func (c *PMSClient) UpdateTransaction(ctx context.Context, transactionID string, completed bool, date, note string) error {
	endpoint := fmt.Sprintf("%s/transactions/%s", c.baseURL, url.PathEscape(transactionID))
	payload := map[string]interface{}{
		"completed": completed,
		"note":      note,
	}
	if date != "" {
		payload["completed_at"] = date
	}
	return doJSON(ctx, c.client, "reservation", http.MethodPut, endpoint, nil, payload, nil)
}

func (c *PMSClient) GetCalendar(ctx context.Context, listingID, from, to string) ([]CalendarDay, error) {
	endpoint := fmt.Sprintf("%s/listings/%s/calendar?from=%s&to=%s",
		c.baseURL, url.PathEscape(listingID), url.QueryEscape(from), url.QueryEscape(to))
	var days []CalendarDay
	if err := doJSON(ctx, c.client, "reservation", http.MethodGet, endpoint, nil, nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *PMSClient) GetPrice(ctx context.Context, listingID, from, to string, adults, children int) (*PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/listings/%s/price?from=%s&to=%s&adults=%d&children=%d",
		c.baseURL, url.PathEscape(listingID), url.QueryEscape(from), url.QueryEscape(to), adults, children)
	var quote PriceQuote
	if err := doJSON(ctx, c.client, "reservation", http.MethodGet, endpoint, nil, nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *PMSClient) GetInboxThread(ctx context.Context, reservationID string) ([]InboxMessage, error) {
	endpoint := fmt.Sprintf("%s/reservations/%s/messages", c.baseURL, url.PathEscape(reservationID))
	var messages []InboxMessage
	if err := doJSON(ctx, c.client, "reservation", http.MethodGet, endpoint, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
