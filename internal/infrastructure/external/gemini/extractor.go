// Package gemini implements the invoice extraction gateway on the Gemini
// API, which reads both images and multi-page PDFs natively.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sousbill/sousbill/internal/application/port"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const extractionPrompt = `You are an expert data extraction system for restaurant accounting.
Analyze the attached document (an image or a multi-page PDF of a purchase invoice).

Extract the following information and return it EXCLUSIVELY as JSON:

1. "vendor": Name of the supplier or store.
2. "date": Invoice date in YYYY-MM-DD format. If the year is missing, assume the current one.
3. "currency": Currency code (EUR, USD, etc.).
4. "total_amount": The final total amount of the invoice (decimal number).
5. "items": A list of the purchased products. For each product extract:
   - "description": Product name.
   - "quantity": Quantity (number). If not specified, use 1.
   - "unit_price": Unit price (number).
   - "total": Line total (number).

IMPORTANT:
- If the document has several pages, list the items of ALL pages.
- Do not include extra text or markdown fences, only the raw JSON object.
- If a numeric field is unclear, use 0.0.`

// Extractor implements port.InvoiceExtractor using Gemini.
type Extractor struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a new Gemini invoice extractor
func NewExtractor(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Extractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Extractor{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Extract sends the document to the model and parses the returned JSON
// into a loosely typed map. The result is untrusted input for the
// normalizer.
func (e *Extractor) Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error) {
	e.logger.Info("Extracting invoice with Gemini",
		zap.String("model", e.model),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(document)))

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     document,
					},
				},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &payload); err != nil {
		e.logger.Error("Failed to parse model response",
			zap.Error(err),
			zap.String("raw_response", rawText))
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	return payload, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk the model
// sometimes adds despite the instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

var _ port.InvoiceExtractor = (*Extractor)(nil)
