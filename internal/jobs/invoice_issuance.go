package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/mailer"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/aldeiamar/booking-api/internal/pricing"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Invoice line categories the fiscal authority distinguishes.
const (
	CategoryAccommodation = "accommodation"
	CategoryExtra         = "extra"
	CategoryCityTax       = "city-tax"

	// Exemption reason attached to zero-VAT lines.
	zeroVATExemptionCode = "M16"
)

var errAlreadyInvoiced = errors.New("item already invoiced")

// InvoiceIssuanceJob issues fiscal invoices for completed stays. Invoices
// are deliberately not created at booking time; a stay becomes eligible
// once its reservation is accepted and its checkout date has passed, so
// no-shows and cancellations are never invoiced. Every eligible item is
// processed per run.
type InvoiceIssuanceJob struct {
	db                 *gorm.DB
	pms                gateways.ReservationGateway
	payments           gateways.PaymentGateway
	fiscal             gateways.FiscalGateway
	credentials        gateways.CredentialSource
	mailer             mailer.Mailer
	finalConsumerTaxID string
	log                *logrus.Entry
}

func NewInvoiceIssuanceJob(db *gorm.DB, pms gateways.ReservationGateway, payments gateways.PaymentGateway,
	fiscal gateways.FiscalGateway, credentials gateways.CredentialSource, m mailer.Mailer,
	finalConsumerTaxID string, log *logrus.Logger) *InvoiceIssuanceJob {
	return &InvoiceIssuanceJob{
		db:                 db,
		pms:                pms,
		payments:           payments,
		fiscal:             fiscal,
		credentials:        credentials,
		mailer:             m,
		finalConsumerTaxID: finalConsumerTaxID,
		log:                log.WithField("job", "invoice_issuance"),
	}
}

func (j *InvoiceIssuanceJob) Run(ctx context.Context) error {
	var orders []models.Order
	if err := j.db.WithContext(ctx).Find(&orders).Error; err != nil {
		return err
	}

	for i := range orders {
		j.processOrder(ctx, &orders[i])
	}
	return nil
}

func (j *InvoiceIssuanceJob) processOrder(ctx context.Context, order *models.Order) {
	log := j.log.WithField("order", order.OrderID)

	var customer *gateways.InvoiceCustomer
	var paymentSummary string
	for position, itemIndex := range order.StayItemIndexes() {
		if position >= len(order.ReservationIDs) {
			log.Error("stay items and reservation ids out of alignment")
			return
		}
		item := order.Items[itemIndex]
		if item.InvoiceID != "" {
			continue
		}

		reservation, err := j.pms.GetReservation(ctx, order.ReservationIDs[position])
		if err != nil {
			log.WithError(err).Error("reservation lookup failed")
			continue
		}
		if !j.eligible(reservation) {
			continue
		}

		if customer == nil {
			customer, paymentSummary, err = j.billingDetails(ctx, order)
			if err != nil {
				log.WithError(err).Error("billing details unavailable, order left for next run")
				return
			}
		}

		listingID := item.ListingID
		if listingID == "" {
			listingID = reservation.ListingID
		}
		apiKey, err := j.credentials.APIKey(listingID)
		if err != nil {
			log.WithError(err).Warn("no fiscal credential for listing, item skipped")
			continue
		}

		if err := j.issueInvoice(ctx, log, order, itemIndex, item, apiKey, *customer, paymentSummary); err != nil {
			log.WithError(err).Error("invoice issuance failed, item left for next run")
		}
	}
}

func (j *InvoiceIssuanceJob) eligible(reservation *gateways.Reservation) bool {
	if reservation.Status != gateways.ReservationStatusAccepted {
		return false
	}
	checkOut, err := time.Parse(dateLayout, reservation.CheckOut)
	if err != nil {
		return false
	}
	today := time.Now().Truncate(24 * time.Hour)
	return !checkOut.After(today)
}

// billingDetails resolves the invoice customer and the "paid with" line for
// the receipt from a single payment intent lookup.
func (j *InvoiceIssuanceJob) billingDetails(ctx context.Context, order *models.Order) (*gateways.InvoiceCustomer, string, error) {
	intent, err := j.payments.RetrievePaymentIntent(ctx, order.PaymentIntentID)
	if err != nil {
		return nil, "", err
	}
	charge, err := j.payments.RetrieveCharge(ctx, intent.ChargeID)
	if err != nil {
		return nil, "", err
	}

	taxID := order.TaxNumber
	if taxID == "" {
		taxID = j.finalConsumerTaxID
	}
	name := order.Company
	if name == "" {
		name = order.Name
	}

	customer := &gateways.InvoiceCustomer{
		Name:        name,
		Email:       order.Email,
		TaxID:       taxID,
		AddressLine: charge.AddressLine,
		City:        charge.City,
		PostalCode:  charge.PostalCode,
		Country:     charge.Country,
	}
	return customer, j.paymentSummary(ctx, intent), nil
}

func (j *InvoiceIssuanceJob) issueInvoice(ctx context.Context, log *logrus.Entry, order *models.Order,
	itemIndex int, item models.OrderItem, apiKey string, customer gateways.InvoiceCustomer, paymentSummary string) error {
	property, err := j.fiscal.GetProperty(ctx, apiKey)
	if err != nil {
		return err
	}

	invoiceID, err := j.fiscal.OpenInvoice(ctx, apiKey, customer)
	if err != nil {
		return err
	}

	for _, fee := range item.Fees {
		line := gateways.InvoiceLine{
			Category:    classifyFee(fee),
			Description: fee.Name,
			Price:       fee.Gross,
			VATPercent:  fee.InclusivePercent * 100,
		}
		if fee.InclusivePercent == 0 {
			line.ExemptionCode = zeroVATExemptionCode
		}
		if err := j.fiscal.AddInvoiceLine(ctx, apiKey, invoiceID, line); err != nil {
			return err
		}
	}

	document, err := j.fiscal.ListInvoices(ctx, apiKey, invoiceID)
	if err != nil {
		return err
	}

	if err := j.attachInvoice(ctx, order.OrderID, itemIndex, invoiceID, document.URL); err != nil {
		if errors.Is(err, errAlreadyInvoiced) {
			log.WithField("item", itemIndex).Warn("item invoiced by a concurrent run")
			return nil
		}
		return err
	}

	subject := fmt.Sprintf("Your invoice for %s", property.Name)
	if err := j.mailer.Send(order.Email, subject, renderReceipt(order, item, property, paymentSummary, document.URL)); err != nil {
		log.WithError(err).Warn("receipt delivery failed, invoice already attached")
	}
	return nil
}

// paymentSummary describes how the order was paid, for the receipt email.
// It is cosmetic: a lookup failure degrades to an empty summary instead of
// blocking the invoice.
func (j *InvoiceIssuanceJob) paymentSummary(ctx context.Context, intent *gateways.PaymentIntent) string {
	if intent.PaymentMethodID == "" {
		return ""
	}
	method, err := j.payments.RetrievePaymentMethod(ctx, intent.PaymentMethodID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s ending in %s", method.Brand, method.Last4)
}

// attachInvoice writes the invoice linkage under a presence check so a
// concurrent second run cannot double-invoice the same index.
func (j *InvoiceIssuanceJob) attachInvoice(ctx context.Context, orderID string, itemIndex int, invoiceID, url string) error {
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("order_id = ?", orderID).First(&order).Error; err != nil {
			return err
		}
		if itemIndex >= len(order.Items) {
			return fmt.Errorf("item index %d out of range", itemIndex)
		}
		if order.Items[itemIndex].InvoiceID != "" {
			return errAlreadyInvoiced
		}

		items := []models.OrderItem(order.Items)
		items[itemIndex].InvoiceID = invoiceID
		items[itemIndex].InvoiceURL = url
		order.Items = datatypes.NewJSONSlice(items)
		return tx.Save(&order).Error
	})
}

func classifyFee(fee models.OrderFee) string {
	switch fee.Type {
	case pricing.FeeTypeTax:
		return CategoryCityTax
	case "accommodation", "base":
		return CategoryAccommodation
	default:
		return CategoryExtra
	}
}

func renderReceipt(order *models.Order, item models.OrderItem, property *gateways.FiscalProperty, paymentSummary, url string) string {
	paid := ""
	if paymentSummary != "" {
		paid = fmt.Sprintf("<p>Paid with %s.</p>", paymentSummary)
	}
	return fmt.Sprintf(
		"<p>Dear %s,</p><p>the invoice for your stay at %s (%s – %s) is ready.</p>%s<p><a href=%q>Download invoice</a></p>",
		order.Name, property.Name, item.CheckIn, item.CheckOut, paid, url,
	)
}
