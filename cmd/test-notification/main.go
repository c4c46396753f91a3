package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/infrastructure/external/resend"
	"github.com/sousbill/sousbill/internal/notification"
)

func main() {
	// Parse command line flags
	apiKey := flag.String("key", "", "Resend API key (or set RESEND_API_KEY env var)")
	from := flag.String("from", "alerts@sousbill.app", "Sender address")
	to := flag.String("to", "", "Recipient address (required)")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	// Initialize logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = os.Getenv("RESEND_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: RESEND_API_KEY not set and no --key flag provided\n")
		os.Exit(1)
	}
	if *to == "" {
		fmt.Fprintf(os.Stderr, "ERROR: --to is required\n")
		os.Exit(1)
	}

	fmt.Println("=== Price Alert Notification Test ===")
	fmt.Printf("  From: %s\n", *from)
	fmt.Printf("  To: %s\n", *to)
	fmt.Println()

	transport := resend.NewTransport(*apiKey, *from, logger)
	notifier := notification.NewPriceAlertNotifier(transport, logger)

	alerts := []entity.PriceAlert{
		{Product: "Olive Oil 5L", PreviousPrice: 24.90, NewPrice: 28.50},
		{Product: "Flour T55 25kg", PreviousPrice: 18.00, NewPrice: 18.75},
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Sending test alert email...")
	if err := notifier.SendPriceAlerts(ctx, *to, alerts); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to send alert email: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Alert email sent")
}
