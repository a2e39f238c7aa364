package handlers

import (
	"context"
	"errors"

	"github.com/aldeiamar/booking-api/internal/auth"
	"github.com/aldeiamar/booking-api/internal/models"
	"github.com/aldeiamar/booking-api/internal/orders"
	"github.com/aldeiamar/booking-api/internal/pricing"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/datatypes"
)

type OrderHandler struct {
	controller *orders.Controller
	auth       *auth.Handler
}

func NewOrderHandler(controller *orders.Controller, authHandler *auth.Handler) *OrderHandler {
	return &OrderHandler{controller: controller, auth: authHandler}
}

type QuoteInput struct {
	ListingID string `path:"listing" doc:"PMS listing id"`
	CheckIn   string `query:"check_in" doc:"Check-in date (2006-01-02)"`
	CheckOut  string `query:"check_out" doc:"Check-out date (2006-01-02)"`
	Adults    int    `query:"adults" minimum:"1" doc:"Adult guests"`
	Children  int    `query:"children" minimum:"0" doc:"Child guests"`
}

type QuoteOutput struct {
	Body pricing.Breakdown
}

func (h *OrderHandler) HandleQuote(ctx context.Context, input *QuoteInput) (*QuoteOutput, error) {
	breakdown, err := h.controller.Quote(ctx, input.ListingID, input.CheckIn, input.CheckOut, input.Adults, input.Children)
	if errors.Is(err, orders.ErrRangeUnavailable) {
		return nil, huma.Error409Conflict("Range unavailable")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to price the stay")
	}
	return &QuoteOutput{Body: *breakdown}, nil
}

type CreateOrderInput struct {
	auth.AuthInput
	Body struct {
		Name            string             `json:"name" doc:"Purchaser name"`
		Email           string             `json:"email" format:"email" doc:"Purchaser email"`
		Phone           string             `json:"phone,omitempty"`
		Company         string             `json:"company,omitempty"`
		TaxNumber       string             `json:"tax_number,omitempty"`
		Items           []models.OrderItem `json:"items"`
		ReservationIDs  []string           `json:"reservation_ids"`
		ReservationRefs []string           `json:"reservation_refs"`
		PaymentIntentID string             `json:"payment_intent_id"`
		TransactionIDs  []string           `json:"transaction_ids"`
	}
}

type CreateOrderOutput struct {
	Body struct {
		OrderID string `json:"order_id"`
	}
}

// HandleCreate receives the checkout hand-off once the payment intent is
// confirmed upstream.
func (h *OrderHandler) HandleCreate(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	if _, err := h.auth.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	stays := 0
	for _, item := range input.Body.Items {
		if item.Kind == models.ItemKindStay {
			stays++
		}
	}
	if stays != len(input.Body.ReservationIDs) || stays != len(input.Body.ReservationRefs) {
		return nil, huma.Error400BadRequest("Reservation ids and refs must align with stay items")
	}

	order := &models.Order{
		Name:            input.Body.Name,
		Email:           input.Body.Email,
		Phone:           input.Body.Phone,
		Company:         input.Body.Company,
		TaxNumber:       input.Body.TaxNumber,
		Items:           datatypes.NewJSONSlice(input.Body.Items),
		ReservationIDs:  datatypes.NewJSONSlice(input.Body.ReservationIDs),
		ReservationRefs: datatypes.NewJSONSlice(input.Body.ReservationRefs),
		PaymentIntentID: input.Body.PaymentIntentID,
		TransactionIDs:  datatypes.NewJSONSlice(input.Body.TransactionIDs),
	}
	if err := h.controller.Create(ctx, order); err != nil {
		return nil, huma.Error500InternalServerError("Failed to store order")
	}

	res := &CreateOrderOutput{}
	res.Body.OrderID = order.OrderID
	return res, nil
}

type CancelOrderInput struct {
	auth.AuthInput
	OrderID string `path:"id"`
}

type CancelOrderOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *OrderHandler) HandleCancel(ctx context.Context, input *CancelOrderInput) (*CancelOrderOutput, error) {
	actor, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	err = h.controller.Cancel(ctx, input.OrderID, actor)
	if errors.Is(err, orders.ErrNotFound) {
		return nil, huma.Error404NotFound("Order not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Cancellation incomplete, operator retry required")
	}

	res := &CancelOrderOutput{}
	res.Body.Message = "Order cancelled"
	return res, nil
}

type DeleteOrderInput struct {
	auth.AuthInput
	OrderID string `path:"id"`
}

type DeleteOrderOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

func (h *OrderHandler) HandleDelete(ctx context.Context, input *DeleteOrderInput) (*DeleteOrderOutput, error) {
	actor, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := &DeleteOrderOutput{}
	res.Body.Deleted = h.controller.Delete(ctx, input.OrderID, actor)
	return res, nil
}
