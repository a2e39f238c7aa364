package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ItemKindProduct  = "product"
	ItemKindActivity = "activity"
	ItemKindStay     = "stay"
)

// OrderFee is one fee line quoted by the PMS for a stay item, after
// apportionment. Gross is the guest-facing amount for this fee.
type OrderFee struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"` // "tax" or a PMS fee code
	Quantity         int     `json:"quantity"`
	TotalNet         float64 `json:"total_net"`
	InclusivePercent float64 `json:"inclusive_percent"`
	Gross            float64 `json:"gross"`
}

// OrderItem is one purchased line. Stay items are index-aligned with the
// order's ReservationIDs and ReservationRefs; an item carries its invoice
// id once issued and is never invoiced twice.
type OrderItem struct {
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	ListingID  string     `json:"listing_id,omitempty"`
	CheckIn    string     `json:"check_in,omitempty"`  // 2006-01-02
	CheckOut   string     `json:"check_out,omitempty"` // 2006-01-02
	Adults     int        `json:"adults,omitempty"`
	Children   int        `json:"children,omitempty"`
	Price      float64    `json:"price"`
	Fees       []OrderFee `json:"fees,omitempty"`
	InvoiceID  string     `json:"invoice_id,omitempty"`
	InvoiceURL string     `json:"invoice_url,omitempty"`
}

type Order struct {
	gorm.Model
	OrderID         string                         `json:"order_id" gorm:"uniqueIndex"`
	Name            string                         `json:"name"`
	Email           string                         `json:"email"`
	Phone           string                         `json:"phone"`
	Company         string                         `json:"company"`
	TaxNumber       string                         `json:"tax_number"`
	Items           datatypes.JSONSlice[OrderItem] `json:"items"`
	ReservationIDs  datatypes.JSONSlice[string]    `json:"reservation_ids"`
	ReservationRefs datatypes.JSONSlice[string]    `json:"reservation_refs"`
	PaymentIntentID string                         `json:"payment_intent_id" gorm:"index"`
	TransactionIDs  datatypes.JSONSlice[string]    `json:"transaction_ids"`
}

// StayItemIndexes returns the positions of stay items within Items, in
// order. Position i in the result corresponds to ReservationIDs[i].
func (o *Order) StayItemIndexes() []int {
	var idx []int
	for i, item := range o.Items {
		if item.Kind == ItemKindStay {
			idx = append(idx, i)
		}
	}
	return idx
}
