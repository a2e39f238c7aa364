package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/aldeiamar/booking-api/internal/pricing"
)

// Reservation statuses as the PMS models them.
const (
	ReservationStatusAccepted        = "accepted"
	ReservationStatusDenied          = "denied"
	ReservationStatusCancelledByHost = "cancelled_by_host"
)

// Calendar day states that make a date range unbookable.
const (
	CalendarDayBooked      = "booked"
	CalendarDayUnavailable = "unavailable"
)

type Reservation struct {
	ID         string `json:"id"`
	BookingRef string `json:"booking_ref"`
	ListingID  string `json:"listing_id"`
	GuestID    string `json:"guest_id"`
	Status     string `json:"status"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
}

type CalendarDay struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type PriceQuote struct {
	Currency string        `json:"currency"`
	Fees     []pricing.Fee `json:"fees"`
}

type InboxMessage struct {
	ID       string    `json:"id"`
	SenderID string    `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// ReservationGateway is the typed boundary to the PMS. Retries and
// authorization decisions live above this layer.
type ReservationGateway interface {
	GetReservation(ctx context.Context, reservationID string) (*Reservation, error)
	UpdateReservationStatus(ctx context.Context, reservationID, status string) error
	UpdateTransaction(ctx context.Context, transactionID string, completed bool, date, note string) error
	GetCalendar(ctx context.Context, listingID, from, to string) ([]CalendarDay, error)
	GetPrice(ctx context.Context, listingID, from, to string, adults, children int) (*PriceQuote, error)
	GetInboxThread(ctx context.Context, reservationID string) ([]InboxMessage, error)
}

type PaymentIntent struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	ChargeID        string `json:"charge_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

type Charge struct {
	ID           string `json:"id"`
	BillingName  string `json:"billing_name"`
	BillingEmail string `json:"billing_email"`
	AddressLine  string `json:"address_line"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

type PaymentMethod struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// PaymentGateway is the typed boundary to the payment processor. Webhook
// signature verification lives in webhook.go next to the event types.
type PaymentGateway interface {
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error)
	RetrievePaymentMethod(ctx context.Context, methodID string) (*PaymentMethod, error)
}

// FiscalProperty is the invoicing configuration the fiscal authority holds
// for one credentialed property.
type FiscalProperty struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
}

type InvoiceCustomer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

type InvoiceLine struct {
	Category      string  `json:"category"` // accommodation | extra | city-tax
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	VATPercent    float64 `json:"vat_percent"`
	ExemptionCode string  `json:"exemption_code,omitempty"`
}

type InvoiceDocument struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// FiscalGateway is the typed boundary to the tax/invoicing authority.
// Every call is keyed by the per-listing API credential.
type FiscalGateway interface {
	RemoveAllGuests(ctx context.Context, apiKey, bookingRef string) error
	AddGuest(ctx context.Context, apiKey, bookingRef string, t models.Traveller) (bool, error)
	Validate(ctx context.Context, apiKey, bookingRef string) (bool, error)
	GetProperty(ctx context.Context, apiKey string) (*FiscalProperty, error)
	OpenInvoice(ctx context.Context, apiKey string, customer InvoiceCustomer) (string, error)
	AddInvoiceLine(ctx context.Context, apiKey, invoiceID string, line InvoiceLine) error
	ListInvoices(ctx context.Context, apiKey, invoiceID string) (*InvoiceDocument, error)
}

// APIError is a non-2xx or malformed upstream response, kept with enough
// detail to log status and body.
type APIError struct {
	Gateway string
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s gateway responded %d: %s", e.Gateway, e.Status, e.Body)
}

func doJSON(ctx context.Context, client *http.Client, gateway, method, url string, header http.Header, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s gateway: %w", gateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Gateway: gateway, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Gateway: gateway, Status: resp.StatusCode, Body: "malformed response: " + err.Error()}
	}
	return nil
}
