package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.Order{}, &models.GuestRegistration{}, &models.Chat{}, &models.ChatMessage{}, &models.FiscalCredential{})
	return db
}

type staticCredentials map[string]string

func (c staticCredentials) APIKey(listingID string) (string, error) {
	key, ok := c[listingID]
	if !ok {
		return "", gateways.ErrNoCredential
	}
	return key, nil
}

type fakePMS struct {
	reservations map[string]*gateways.Reservation
	inbox        map[string][]gateways.InboxMessage
	statuses     map[string]string
	transactions map[string]string
}

func newFakePMS() *fakePMS {
	return &fakePMS{
		reservations: make(map[string]*gateways.Reservation),
		inbox:        make(map[string][]gateways.InboxMessage),
		statuses:     make(map[string]string),
		transactions: make(map[string]string),
	}
}

func (f *fakePMS) GetReservation(ctx context.Context, reservationID string) (*gateways.Reservation, error) {
	reservation, ok := f.reservations[reservationID]
	if !ok {
		return nil, &gateways.APIError{Gateway: "reservation", Status: 404, Body: "no such reservation"}
	}
	return reservation, nil
}

func (f *fakePMS) UpdateReservationStatus(ctx context.Context, reservationID, status string) error {
	f.statuses[reservationID] = status
	return nil
}

func (f *fakePMS) UpdateTransaction(ctx context.Context, transactionID string, completed bool, date, note string) error {
	f.transactions[transactionID] = fmt.Sprintf("completed=%t date=%s note=%s", completed, date, note)
	return nil
}

func (f *fakePMS) GetCalendar(ctx context.Context, listingID, from, to string) ([]gateways.CalendarDay, error) {
	return nil, nil
}

func (f *fakePMS) GetPrice(ctx context.Context, listingID, from, to string, adults, children int) (*gateways.PriceQuote, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePMS) GetInboxThread(ctx context.Context, reservationID string) ([]gateways.InboxMessage, error) {
	return f.inbox[reservationID], nil
}

type fakePayments struct {
	intents       map[string]*gateways.PaymentIntent
	charges       map[string]*gateways.Charge
	intentLookups int
}

func newFakePayments() *fakePayments {
	return &fakePayments{
		intents: make(map[string]*gateways.PaymentIntent),
		charges: make(map[string]*gateways.Charge),
	}
}

func (f *fakePayments) RetrievePaymentIntent(ctx context.Context, intentID string) (*gateways.PaymentIntent, error) {
	f.intentLookups++
	intent, ok := f.intents[intentID]
	if !ok {
		return nil, &gateways.APIError{Gateway: "payment", Status: 404, Body: "no such intent"}
	}
	return intent, nil
}

func (f *fakePayments) RetrieveCharge(ctx context.Context, chargeID string) (*gateways.Charge, error) {
	charge, ok := f.charges[chargeID]
	if !ok {
		return nil, &gateways.APIError{Gateway: "payment", Status: 404, Body: "no such charge"}
	}
	return charge, nil
}

func (f *fakePayments) RetrievePaymentMethod(ctx context.Context, methodID string) (*gateways.PaymentMethod, error) {
	return &gateways.PaymentMethod{ID: methodID, Brand: "visa", Last4: "4242"}, nil
}

type fiscalCall struct {
	op         string
	bookingRef string
	detail     string
}

type fakeFiscal struct {
	calls          []fiscalCall
	rejectDocument string // AddGuest reports failure for this document number
	failValidate   bool
	validationOK   bool
	invoiceLines   map[string][]gateways.InvoiceLine
	nextInvoice    int
}

func newFakeFiscal() *fakeFiscal {
	return &fakeFiscal{validationOK: true, invoiceLines: make(map[string][]gateways.InvoiceLine)}
}

func (f *fakeFiscal) RemoveAllGuests(ctx context.Context, apiKey, bookingRef string) error {
	f.calls = append(f.calls, fiscalCall{op: "remove_all", bookingRef: bookingRef})
	return nil
}

func (f *fakeFiscal) AddGuest(ctx context.Context, apiKey, bookingRef string, t models.Traveller) (bool, error) {
	f.calls = append(f.calls, fiscalCall{op: "add_guest", bookingRef: bookingRef, detail: t.DocumentNumber})
	return t.DocumentNumber != f.rejectDocument, nil
}

func (f *fakeFiscal) Validate(ctx context.Context, apiKey, bookingRef string) (bool, error) {
	f.calls = append(f.calls, fiscalCall{op: "validate", bookingRef: bookingRef})
	if f.failValidate {
		return false, &gateways.APIError{Gateway: "fiscal", Status: 500, Body: "validation unavailable"}
	}
	return f.validationOK, nil
}

func (f *fakeFiscal) GetProperty(ctx context.Context, apiKey string) (*gateways.FiscalProperty, error) {
	return &gateways.FiscalProperty{Name: "Casa do Mar"}, nil
}

func (f *fakeFiscal) OpenInvoice(ctx context.Context, apiKey string, customer gateways.InvoiceCustomer) (string, error) {
	f.nextInvoice++
	id := fmt.Sprintf("inv_%d", f.nextInvoice)
	f.calls = append(f.calls, fiscalCall{op: "open_invoice", detail: customer.TaxID})
	return id, nil
}

func (f *fakeFiscal) AddInvoiceLine(ctx context.Context, apiKey, invoiceID string, line gateways.InvoiceLine) error {
	f.invoiceLines[invoiceID] = append(f.invoiceLines[invoiceID], line)
	return nil
}

func (f *fakeFiscal) ListInvoices(ctx context.Context, apiKey, invoiceID string) (*gateways.InvoiceDocument, error) {
	return &gateways.InvoiceDocument{ID: invoiceID, URL: "https://fiscal.example.com/docs/" + invoiceID}, nil
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, html string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}
