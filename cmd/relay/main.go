package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/application/service"
	"github.com/tsiory/pos-print-relay/internal/config"
	"github.com/tsiory/pos-print-relay/internal/domain/repository"
	"github.com/tsiory/pos-print-relay/internal/infrastructure/database"
	"github.com/tsiory/pos-print-relay/internal/infrastructure/ordersource"
	"github.com/tsiory/pos-print-relay/internal/infrastructure/statestore"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/handler"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/routes"
	"github.com/tsiory/pos-print-relay/pkg/printer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Select the order source
	var source repository.OrderSource
	switch cfg.Source.Mode {
	case "local":
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		source = ordersource.NewLocal(db)
		log.Printf("Order source: local database %s", cfg.Database.Host)
	default:
		source = ordersource.NewRemote(cfg.Source.BackendURL)
		log.Printf("Order source: remote backend %s", cfg.Source.BackendURL)
	}

	// Initialize the thermal printer with fallback to a no-op device
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
		cfg.Printer.QueueName,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize the receipt composer
	composer, err := service.NewComposer(cfg.Render.RenderOptions())
	if err != nil {
		log.Fatalf("Failed to initialize composer: %v", err)
	}

	state := statestore.New(cfg.StatePath)

	printService := service.NewPrintService(
		source,
		composer,
		thermalPrinter,
		cfg.Printer.Type,
		printerDeviceName(&cfg.Printer),
		cfg.Source.BackendURL,
		state,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Print:     handler.NewPrintHandler(printService),
		Receipt:   handler.NewReceiptHandler(printService),
		Discovery: handler.NewDiscoveryHandler(cfg, printService),
		Settings:  handler.NewSettingsHandler(printService, state),
	}

	// Setup routes
	router := routes.Setup(handlers, cfg)

	port := cfg.App.Port
	if port == "" {
		port = "8766"
	}

	log.Printf("Starting %s v%s on port %s...", cfg.App.Name, handler.Version, port)
	log.Printf("Environment: %s | Printer: %s", cfg.App.Env, cfg.Printer.Type)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// printerDeviceName picks the identifier the configured printer type uses.
func printerDeviceName(cfg *config.PrinterConfig) string {
	switch cfg.Type {
	case "usb":
		return cfg.USBPath
	case "network":
		return cfg.Address
	case "spooler":
		return cfg.QueueName
	default:
		return cfg.Type
	}
}
