// main.go
package main

import (
	"log"

	"booking-payments/cmd"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/internal/wire"
	"booking-payments/pkg/database"
	"booking-payments/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Payment gateway client
	gw := gateway.NewStripeGateway(config.Stripe.SecretKey, config.Stripe.Timeout, logger)

	// Domain event sink; falls back to structured logging when no broker
	// is configured.
	var sink events.Sink
	if config.AMQP.URL != "" {
		rabbitSink, err := events.NewRabbitSink(config.AMQP.URL, config.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		sink = rabbitSink
	} else {
		logger.Warn("AMQP_URL not set, domain events go to the log only")
		sink = events.NewLogSink(logger)
	}
	defer sink.Close()

	// Wire all dependencies
	app := wire.Wiring(repos, gw, sink, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
