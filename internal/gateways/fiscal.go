package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aldeiamar/booking-api/internal/config"
	"github.com/aldeiamar/booking-api/internal/models"
)

// FiscalClient talks to the tax/invoicing authority. The credential is a
// per-listing API key supplied on every call rather than held by the
// client, since one process serves many properties.
type FiscalClient struct {
	baseURL string
	client  *http.Client
}

func NewFiscalClient(cfg *config.Config) *FiscalClient {
	return &FiscalClient{
		baseURL: cfg.FiscalBaseURL,
		client:  http.DefaultClient,
	}
}

func keyHeader(apiKey string) http.Header {
	header := http.Header{}
	header.Set("X-Api-Key", apiKey)
	return header
}

func (c *FiscalClient) RemoveAllGuests(ctx context.Context, apiKey, bookingRef string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s/guests", c.baseURL, url.PathEscape(bookingRef))
	return doJSON(ctx, c.client, "fiscal", http.MethodDelete, endpoint, keyHeader(apiKey), nil, nil)
}

func (c *FiscalClient) AddGuest(ctx context.Context, apiKey, bookingRef string, t models.Traveller) (bool, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s/guests", c.baseURL, url.PathEscape(bookingRef))
	var result struct {
		Success bool `json:"success"`
	}
	if err := doJSON(ctx, c.client, "fiscal", http.MethodPost, endpoint, keyHeader(apiKey), t, &result); err != nil {
		return false, err
	}
	return result.Success, nil
}

func (c *FiscalClient) Validate(ctx context.Context, apiKey, bookingRef string) (bool, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s/validate", c.baseURL, url.PathEscape(bookingRef))
	var result struct {
		Valid bool `json:"valid"`
	}
	if err := doJSON(ctx, c.client, "fiscal", http.MethodPost, endpoint, keyHeader(apiKey), nil, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

func (c *FiscalClient) GetProperty(ctx context.Context, apiKey string) (*FiscalProperty, error) {
	var property FiscalProperty
	endpoint := c.baseURL + "/property"
	if err := doJSON(ctx, c.client, "fiscal", http.MethodGet, endpoint, keyHeader(apiKey), nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *FiscalClient) OpenInvoice(ctx context.Context, apiKey string, customer InvoiceCustomer) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	endpoint := c.baseURL + "/invoices"
	if err := doJSON(ctx, c.client, "fiscal", http.MethodPost, endpoint, keyHeader(apiKey), customer, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

func (c *FiscalClient) AddInvoiceLine(ctx context.Context, apiKey, invoiceID string, line InvoiceLine) error {
	endpoint := fmt.Sprintf("%s/invoices/%s/lines", c.baseURL, url.PathEscape(invoiceID))
	return doJSON(ctx, c.client, "fiscal", http.MethodPost, endpoint, keyHeader(apiKey), line, nil)
}

func (c *FiscalClient) ListInvoices(ctx context.Context, apiKey, invoiceID string) (*InvoiceDocument, error) {
	endpoint := fmt.Sprintf("%s/invoices?id=%s", c.baseURL, url.QueryEscape(invoiceID))
	var documents []InvoiceDocument
	if err := doJSON(ctx, c.client, "fiscal", http.MethodGet, endpoint, keyHeader(apiKey), nil, &documents); err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, &APIError{Gateway: "fiscal", Status: http.StatusOK, Body: "invoice " + invoiceID + " not in listing"}
	}
	return &documents[0], nil
}
