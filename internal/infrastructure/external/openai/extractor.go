// Package openai implements the invoice extraction gateway on the OpenAI
// vision API. PDFs are rasterized page by page before the call since the
// chat API only accepts images.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sousbill/sousbill/internal/application/port"
	"go.uber.org/zap"
)

const systemPrompt = "You are an expert data extraction system for restaurant accounting. " +
	"You read purchase invoices from supermarkets and food suppliers with perfect accuracy. " +
	"Always respond with valid JSON."

const visionPrompt = `Carefully examine this purchase invoice and extract ALL information.

Return a JSON object with this exact structure:
{
  "vendor": "string, supplier or store name",
  "date": "YYYY-MM-DD",
  "currency": "string, e.g. EUR",
  "total_amount": number,
  "items": [{"description": "string", "quantity": number, "unit_price": number, "total": number}]
}

IMPORTANT:
- Extract every line item from every page.
- If quantity is not specified, use 1.
- If a numeric field is unclear, use 0.0.
- For amounts, use plain numbers without currency symbols.`

// maxPages bounds vision cost per document.
const maxPages = 4

// Extractor implements port.InvoiceExtractor using OpenAI vision.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a new OpenAI invoice extractor
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Extract runs the document through the vision API and parses the JSON
// response into a loosely typed map.
func (e *Extractor) Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error) {
	e.logger.Info("Extracting invoice with OpenAI vision",
		zap.String("model", e.model),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(document)))

	images, err := e.toImages(document, mimeType)
	if err != nil {
		return nil, err
	}

	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: visionPrompt,
		},
	}
	for i, img := range images {
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", img.mimeType, base64.StdEncoding.EncodeToString(img.data)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
		e.logger.Debug("Added image to request",
			zap.Int("page", i+1),
			zap.Int("size_bytes", len(img.data)))
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   4096,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from vision API")
	}

	content := resp.Choices[0].Message.Content

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		e.logger.Error("Failed to parse vision response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("parse vision response: %w", err)
	}

	return payload, nil
}

type pageImage struct {
	data     []byte
	mimeType string
}

// toImages prepares the vision payload: images pass through, PDFs are
// rasterized up to maxPages.
func (e *Extractor) toImages(document []byte, mimeType string) ([]pageImage, error) {
	switch mimeType {
	case "image/jpeg", "image/png":
		return []pageImage{{data: document, mimeType: mimeType}}, nil
	case "application/pdf":
		pages, err := rasterizePDF(document)
		if err != nil {
			return nil, fmt.Errorf("rasterize PDF: %w", err)
		}
		if len(pages) == 0 {
			return nil, fmt.Errorf("no pages extracted from PDF")
		}
		if len(pages) > maxPages {
			e.logger.Warn("PDF truncated for vision call",
				zap.Int("total_pages", len(pages)),
				zap.Int("sent_pages", maxPages))
			pages = pages[:maxPages]
		}
		images := make([]pageImage, 0, len(pages))
		for _, p := range pages {
			images = append(images, pageImage{data: p, mimeType: "image/jpeg"})
		}
		return images, nil
	default:
		return nil, fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}

var _ port.InvoiceExtractor = (*Extractor)(nil)
