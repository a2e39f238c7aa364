package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	JWTSecret        string `mapstructure:"JWT_SECRET"`
	SyncSharedSecret string `mapstructure:"SYNC_SHARED_SECRET"`

	PMSBaseURL      string `mapstructure:"PMS_BASE_URL"`
	PMSClientID     string `mapstructure:"PMS_CLIENT_ID"`
	PMSClientSecret string `mapstructure:"PMS_CLIENT_SECRET"`
	PMSTokenURL     string `mapstructure:"PMS_TOKEN_URL"`

	PaymentBaseURL       string `mapstructure:"PAYMENT_BASE_URL"`
	PaymentAPIKey        string `mapstructure:"PAYMENT_API_KEY"`
	PaymentWebhookSecret string `mapstructure:"PAYMENT_WEBHOOK_SECRET"`

	FiscalBaseURL      string `mapstructure:"FISCAL_BASE_URL"`
	FinalConsumerTaxID string `mapstructure:"FINAL_CONSUMER_TAX_ID"`

	DiscordBotToken     string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordOpsChannelID string `mapstructure:"DISCORD_OPS_CHANNEL_ID"`

	MailFrom string `mapstructure:"MAIL_FROM"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "bookings.db")
	viper.SetDefault("PMS_BASE_URL", "https://api.pms.example.com/v1")
	viper.SetDefault("PMS_TOKEN_URL", "https://api.pms.example.com/oauth/token")
	viper.SetDefault("PAYMENT_BASE_URL", "https://api.payments.example.com/v1")
	viper.SetDefault("FISCAL_BASE_URL", "https://api.fiscal.example.com/v1")
	viper.SetDefault("FINAL_CONSUMER_TAX_ID", "999999990")
	viper.SetDefault("MAIL_FROM", "reservas@aldeiamar.pt")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("SYNC_SHARED_SECRET")
	viper.BindEnv("PMS_CLIENT_ID")
	viper.BindEnv("PMS_CLIENT_SECRET")
	viper.BindEnv("PAYMENT_API_KEY")
	viper.BindEnv("PAYMENT_WEBHOOK_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_OPS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
