package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Stripe   StripeConfig
	AMQP     AMQPConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// WebhookStrict rejects unverifiable webhook payloads. Only disable
	// for local development against the CLI forwarder.
	WebhookStrict bool
	Timeout       time.Duration
	// PaymentURLTemplate builds the client-facing payment page for the
	// intent flow; placeholders {booking_id} and {client_secret}.
	PaymentURLTemplate string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type AdminConfig struct {
	// APIKeyHash is the bcrypt hash of the admin API key.
	APIKeyHash string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("STRIPE_TIMEOUT_SECONDS", 15)
	viper.SetDefault("WEBHOOK_STRICT", true)
	viper.SetDefault("AMQP_EXCHANGE", "booking.events")
	viper.SetDefault("PAYMENT_URL_TEMPLATE", "https://pay.example.com/checkout/{booking_id}?secret={client_secret}")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Stripe: StripeConfig{
			SecretKey:          viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret:      viper.GetString("STRIPE_WEBHOOK_SECRET"),
			WebhookStrict:      viper.GetBool("WEBHOOK_STRICT"),
			Timeout:            time.Duration(viper.GetInt("STRIPE_TIMEOUT_SECONDS")) * time.Second,
			PaymentURLTemplate: viper.GetString("PAYMENT_URL_TEMPLATE"),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
		Admin: AdminConfig{
			APIKeyHash: viper.GetString("ADMIN_API_KEY_HASH"),
		},
	}

	return config, nil
}
