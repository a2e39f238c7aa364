package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/aldeiamar/booking-api/internal/notifier"
	"github.com/aldeiamar/booking-api/internal/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRangeUnavailable = errors.New("requested date range is unavailable")
	ErrNotFound         = errors.New("order not found")
)

const dateLayout = "2006-01-02"

// Controller orchestrates order creation, cancellation and deletion. It is
// the only component that writes the PMS and the order store together; the
// PMS has no rollback primitive, so partial failures are reported for
// operator retry instead of compensated.
type Controller struct {
	db       *gorm.DB
	pms      gateways.ReservationGateway
	notifier notifier.Notifier
	log      *logrus.Entry
}

func NewController(db *gorm.DB, pms gateways.ReservationGateway, n notifier.Notifier, log *logrus.Logger) *Controller {
	return &Controller{
		db:       db,
		pms:      pms,
		notifier: n,
		log:      log.WithField("component", "orders"),
	}
}

// Quote validates a requested stay against the listing calendar and prices
// it. It never writes the order store; persistence happens once payment
// succeeds.
func (c *Controller) Quote(ctx context.Context, listingID, checkIn, checkOut string, adults, children int) (*pricing.Breakdown, error) {
	nights := nightsBetween(checkIn, checkOut)
	if nights == 0 {
		return nil, ErrRangeUnavailable
	}

	days, err := c.pms.GetCalendar(ctx, listingID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	for _, day := range days {
		if day.Status == gateways.CalendarDayBooked || day.Status == gateways.CalendarDayUnavailable {
			return nil, ErrRangeUnavailable
		}
	}

	quote, err := c.pms.GetPrice(ctx, listingID, checkIn, checkOut, adults, children)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Apportion(quote.Fees, adults, nights)
	return &breakdown, nil
}

// Create persists the pending order handed off by checkout once the
// payment intent is confirmed upstream. The public order id is minted
// here.
func (c *Controller) Create(ctx context.Context, order *models.Order) error {
	order.OrderID = uuid.NewString()
	return c.db.WithContext(ctx).Create(order).Error
}

// Cancel moves the order's reservation to the host-cancelled state and
// flags its payment transactions as not completed, with an audit note
// naming the actor. Both writes are always attempted; a partial failure is
// logged and alerted for operator retry.
func (c *Controller) Cancel(ctx context.Context, orderID, actor string) error {
	order, err := c.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	note := fmt.Sprintf("cancelled by %s", actor)
	var failures []error

	for _, reservationID := range order.ReservationIDs {
		if err := c.pms.UpdateReservationStatus(ctx, reservationID, gateways.ReservationStatusCancelledByHost); err != nil {
			failures = append(failures, fmt.Errorf("reservation %s: %w", reservationID, err))
		}
	}
	for _, transactionID := range order.TransactionIDs {
		if err := c.pms.UpdateTransaction(ctx, transactionID, false, "", note); err != nil {
			failures = append(failures, fmt.Errorf("transaction %s: %w", transactionID, err))
		}
	}

	if len(failures) > 0 {
		err := errors.Join(failures...)
		c.log.WithField("order", orderID).WithError(err).Error("partial cancel, operator retry needed")
		if c.notifier != nil {
			c.notifier.NotifyReconciliationFailure("order cancel "+orderID, err.Error())
		}
		return err
	}
	return nil
}

// Delete removes an order and everything hanging off it. External-system
// writes and dependent-store deletes run before the order row is removed,
// so a crash mid-delete leaves the order behind as the signal to retry.
// The result is a plain success flag; failures never propagate as panics.
func (c *Controller) Delete(ctx context.Context, orderID, actor string) bool {
	order, err := c.findOrder(ctx, orderID)
	if err != nil {
		c.log.WithField("order", orderID).WithError(err).Warn("delete: order lookup failed")
		return false
	}
	return c.DeleteOrder(ctx, order, actor, gateways.ReservationStatusCancelledByHost)
}

// DeleteOrder is the shared teardown used by authorized deletes and by the
// automatic payment-failure path, which passes the denied status and no
// actor.
func (c *Controller) DeleteOrder(ctx context.Context, order *models.Order, actor, reservationStatus string) bool {
	log := c.log.WithField("order", order.OrderID)

	note := "payment not completed"
	if actor != "" {
		note = fmt.Sprintf("order deleted by %s", actor)
	}

	for _, reservationID := range order.ReservationIDs {
		if err := c.pms.UpdateReservationStatus(ctx, reservationID, reservationStatus); err != nil {
			log.WithError(err).Error("delete: reservation status update failed")
			return false
		}
		if err := c.deleteConversation(ctx, reservationID); err != nil {
			log.WithError(err).Error("delete: conversation teardown failed")
			return false
		}
	}

	for _, bookingRef := range order.ReservationRefs {
		if err := c.db.WithContext(ctx).Where("booking_ref = ?", bookingRef).Delete(&models.GuestRegistration{}).Error; err != nil {
			log.WithError(err).Error("delete: guest registration teardown failed")
			return false
		}
	}

	for _, transactionID := range order.TransactionIDs {
		if err := c.pms.UpdateTransaction(ctx, transactionID, false, "", note); err != nil {
			log.WithError(err).Error("delete: transaction update failed")
			return false
		}
	}

	if err := c.db.WithContext(ctx).Delete(order).Error; err != nil {
		log.WithError(err).Error("delete: order row removal failed")
		return false
	}
	return true
}

// FindByPaymentIntent resolves an order from the payment id carried by
// webhook events.
func (c *Controller) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).Where("payment_intent_id = ?", paymentIntentID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Controller) findOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Controller) deleteConversation(ctx context.Context, reservationID string) error {
	var chat models.Chat
	err := c.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).Where("chat_id = ?", chat.ID).Delete(&models.ChatMessage{}).Error; err != nil {
		return err
	}
	return c.db.WithContext(ctx).Delete(&chat).Error
}

func nightsBetween(checkIn, checkOut string) int {
	in, errIn := time.Parse(dateLayout, checkIn)
	out, errOut := time.Parse(dateLayout, checkOut)
	if errIn != nil || errOut != nil || !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
