package handlers

import (
	"net/http"

	"github.com/aldeiamar/booking-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(r *chi.Mux, syncSecret string,
	orderHandler *OrderHandler, registrationHandler *RegistrationHandler,
	fiscalKeyHandler *FiscalKeyHandler, inboxHandler *InboxHandler,
	webhookHandler *WebhookHandler, syncHandler *SyncHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Aldeia Mar Booking API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Post("/webhooks/payment", webhookHandler.HandlePaymentWebhook)

	// Cron triggers, guarded by the scheduler's shared secret
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSharedSecret(syncSecret))
		r.Get("/sync/inbox", syncHandler.HandleInboxSync)
		r.Get("/sync/fiscal", syncHandler.HandleFiscalSync)
		r.Get("/sync/invoices", syncHandler.HandleInvoiceSync)
	})

	// Checkout support and guest-facing data entry
	huma.Get(api, "/listings/{listing}/quote", orderHandler.HandleQuote)
	huma.Get(api, "/bookings/{ref}/registration", registrationHandler.HandleGet)
	huma.Put(api, "/bookings/{ref}/registration", registrationHandler.HandleUpdate)

	// Mutating operations carry their own Authorize check
	sessionSecured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}
	huma.Post(api, "/orders", orderHandler.HandleCreate, sessionSecured)
	huma.Post(api, "/orders/{id}/cancel", orderHandler.HandleCancel, sessionSecured)
	huma.Delete(api, "/orders/{id}", orderHandler.HandleDelete, sessionSecured)
	huma.Put(api, "/listings/{listing}/fiscal-key", fiscalKeyHandler.HandleSet, sessionSecured)
	huma.Post(api, "/reservations/{id}/inbox-sync", inboxHandler.HandleSync, sessionSecured)
}
