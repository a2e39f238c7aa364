package main

import (
	"fmt"
	"net/http"

	"github.com/aldeiamar/booking-api/internal/auth"
	"github.com/aldeiamar/booking-api/internal/config"
	"github.com/aldeiamar/booking-api/internal/database"
	"github.com/aldeiamar/booking-api/internal/gateways"
	"github.com/aldeiamar/booking-api/internal/handlers"
	"github.com/aldeiamar/booking-api/internal/jobs"
	"github.com/aldeiamar/booking-api/internal/mailer"
	"github.com/aldeiamar/booking-api/internal/notifier"
	"github.com/aldeiamar/booking-api/internal/orders"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Connect to Database
	db := database.Connect(cfg)

	// Gateway clients
	pms := gateways.NewPMSClient(cfg)
	payments := gateways.NewPaymentClient(cfg)
	fiscal := gateways.NewFiscalClient(cfg)
	credentials := gateways.NewCredentialCache(db)

	// Operator alerts
	var opsNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.WithError(err).Warn("Discord notifier not initialized")
		} else {
			opsNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordOpsChannelID)
		}
	}

	mail := mailer.NewLogMailer(cfg.MailFrom, log)

	// Core pipeline
	controller := orders.NewController(db, pms, opsNotifier, log)
	inboxJob := jobs.NewInboxSyncJob(db, pms, log)
	fiscalJob := jobs.NewFiscalSyncJob(db, fiscal, credentials, log)
	invoiceJob := jobs.NewInvoiceIssuanceJob(db, pms, payments, fiscal, credentials, mail, cfg.FinalConsumerTaxID, log)

	// Initialize Handlers
	authHandler := auth.NewHandler(cfg)
	orderHandler := handlers.NewOrderHandler(controller, authHandler)
	registrationHandler := handlers.NewRegistrationHandler(db)
	fiscalKeyHandler := handlers.NewFiscalKeyHandler(db, credentials, authHandler)
	inboxHandler := handlers.NewInboxHandler(inboxJob, authHandler)
	webhookHandler := handlers.NewWebhookHandler(controller, pms, cfg.PaymentWebhookSecret, log)
	syncHandler := handlers.NewSyncHandler(inboxJob, fiscalJob, invoiceJob, log)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg.SyncSharedSecret,
		orderHandler, registrationHandler, fiscalKeyHandler, inboxHandler,
		webhookHandler, syncHandler)

	// Start Server
	log.Infof("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
