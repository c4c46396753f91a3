package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

func TestSanitizeDraft(t *testing.T) {
	t.Run("drops rows without description", func(t *testing.T) {
		draft := &entity.ExtractedInvoice{
			Currency: "EUR",
			Items: []*entity.ExtractedItem{
				{Description: "Flour", Quantity: 1, UnitPrice: 2.0, TotalPrice: 2.0},
				{Description: "   "},
				nil,
			},
		}
		require.NoError(t, sanitizeDraft(draft))
		require.Len(t, draft.Items, 1)
		assert.Equal(t, "Flour", draft.Items[0].Description)
	})

	t.Run("defaults currency and quantity", func(t *testing.T) {
		draft := &entity.ExtractedInvoice{
			Items: []*entity.ExtractedItem{
				{Description: "Eggs", Quantity: 0, UnitPrice: 0.2},
			},
		}
		require.NoError(t, sanitizeDraft(draft))
		assert.Equal(t, "EUR", draft.Currency)
		assert.Equal(t, 1.0, draft.Items[0].Quantity)
		assert.Equal(t, 0.2, draft.Items[0].TotalPrice, "total recomputed from quantity and unit price")
	})

	t.Run("keeps explicit total", func(t *testing.T) {
		draft := &entity.ExtractedInvoice{
			Currency: "EUR",
			Items: []*entity.ExtractedItem{
				{Description: "Milk", Quantity: 2, UnitPrice: 2.5, TotalPrice: 5.5},
			},
		}
		require.NoError(t, sanitizeDraft(draft))
		assert.Equal(t, 5.5, draft.Items[0].TotalPrice)
	})

	t.Run("rejects negative numbers", func(t *testing.T) {
		assert.Error(t, sanitizeDraft(&entity.ExtractedInvoice{TotalAmount: -1}))
		assert.Error(t, sanitizeDraft(&entity.ExtractedInvoice{
			Items: []*entity.ExtractedItem{
				{Description: "Flour", UnitPrice: -2.0},
			},
		}))
	})
}

func TestDocumentMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		want     string
		wantErr  bool
	}{
		{"declared pdf", "application/pdf", "scan.bin", "application/pdf", false},
		{"declared with params", "image/jpeg; charset=binary", "x", "image/jpeg", false},
		{"fallback to extension", "application/octet-stream", "invoice.PDF", "application/pdf", false},
		{"jpeg extension", "", "photo.jpg", "image/jpeg", false},
		{"png extension", "", "photo.png", "image/png", false},
		{"unsupported", "text/plain", "notes.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := documentMIMEType(tt.declared, tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
