package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aldeiamar/booking-api/internal/config"
)

// PaymentClient talks to the payment processor with a bearer API key.
type PaymentClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPaymentClient(cfg *config.Config) *PaymentClient {
	return &PaymentClient{
		baseURL: cfg.PaymentBaseURL,
		apiKey:  cfg.PaymentAPIKey,
		client:  http.DefaultClient,
	}
}

func (c *PaymentClient) authHeader() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	return header
}

func (c *PaymentClient) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	endpoint := fmt.Sprintf("%s/payment_intents/%s", c.baseURL, url.PathEscape(intentID))
	if err := doJSON(ctx, c.client, "payment", http.MethodGet, endpoint, c.authHeader(), nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *PaymentClient) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	var charge Charge
	endpoint := fmt.Sprintf("%s/charges/%s", c.baseURL, url.PathEscape(chargeID))
	if err := doJSON(ctx, c.client, "payment", http.MethodGet, endpoint, c.authHeader(), nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (c *PaymentClient) RetrievePaymentMethod(ctx context.Context, methodID string) (*PaymentMethod, error) {
	var method PaymentMethod
	endpoint := fmt.Sprintf("%s/payment_methods/%s", c.baseURL, url.PathEscape(methodID))
	if err := doJSON(ctx, c.client, "payment", http.MethodGet, endpoint, c.authHeader(), nil, &method); err != nil {
		return nil, err
	}
	return &method, nil
}
