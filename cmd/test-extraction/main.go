package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/infrastructure/external/gemini"
	"github.com/sousbill/sousbill/internal/infrastructure/external/openai"
	"github.com/sousbill/sousbill/internal/invoice"
)

func main() {
	// Parse command line flags
	provider := flag.String("provider", "gemini", "Extraction provider: gemini or openai")
	apiKey := flag.String("key", "", "API key (or set EXTRACTION_API_KEY env var)")
	model := flag.String("model", "", "Model name (defaults per provider)")
	timeout := flag.Duration("timeout", 90*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: test-extraction [--provider gemini|openai] [--key ...] <invoice.pdf|jpg|png>\n")
		os.Exit(1)
	}
	documentPath := flag.Arg(0)

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
		*apiKey = os.Getenv("EXTRACTION_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: EXTRACTION_API_KEY not set and no --key flag provided\n")
		os.Exit(1)
	}

	if *model == "" {
		if *provider == "gemini" {
			*model = "gemini-1.5-flash"
		} else {
			*model = "gpt-4o"
		}
	}

	fmt.Println("=== Invoice Extraction Test ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", *provider)
	fmt.Printf("  Model: %s\n", *model)
	fmt.Printf("  Document: %s\n", documentPath)
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	document, err := os.ReadFile(documentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read document: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Document loaded: %d bytes\n\n", len(document))

	mimeType := mimeTypeFor(documentPath)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var extractor port.InvoiceExtractor
	switch *provider {
	case "gemini":
		extractor, err = gemini.NewExtractor(ctx, *apiKey, *model, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize extractor: %v\n", err)
			os.Exit(1)
		}
	case "openai":
		extractor = openai.NewExtractor(*apiKey, *model, logger)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: Unknown provider %q\n", *provider)
		os.Exit(1)
	}

	fmt.Println("Calling extraction model...")
	start := time.Now()
	raw, err := extractor.Extract(ctx, document, mimeType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Extraction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Extraction completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	fmt.Println("Raw payload:")
	rawJSON, _ := json.MarshalIndent(raw, "  ", "  ")
	fmt.Printf("  %s\n\n", rawJSON)

	normalizer := invoice.NewNormalizer(logger)
	draft, err := normalizer.Normalize(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Normalization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Normalized invoice:")
	fmt.Printf("  Vendor: %s\n", draft.Vendor)
	fmt.Printf("  Date: %s\n", draft.Date)
	fmt.Printf("  Total: %.2f %s\n", draft.TotalAmount, draft.Currency)
	fmt.Printf("  Items: %d\n", len(draft.Items))
	for _, it := range draft.Items {
		fmt.Printf("    - %s: %.2f x %.2f = %.2f\n",
			it.Description, it.Quantity, it.UnitPrice, it.TotalPrice)
	}
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
