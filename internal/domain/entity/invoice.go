package entity

import "time"

// Invoice is one purchase event: a supplier invoice uploaded by a user.
// Dates are stored as ISO-8601 strings (YYYY-MM-DD) so that lexicographic
// ordering matches chronological ordering.
type Invoice struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Vendor      string    `json:"vendor"`
	Date        string    `json:"date"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Items []*InvoiceItem `json:"items,omitempty"`
}

// InvoiceItem is one product line within an invoice. Description is the
// join key for price-history lookups (exact string match).
type InvoiceItem struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// ExtractedInvoice is the canonical, validated result of running a raw
// extraction payload through the normalizer. It is request-scoped state:
// returned to the caller after analysis and passed back in for ingestion,
// never held server-side between the two steps.
type ExtractedInvoice struct {
	Vendor      string           `json:"vendor"`
	Date        string           `json:"date"`
	Currency    string           `json:"currency"`
	TotalAmount float64          `json:"total_amount"`
	ImageURL    string           `json:"image_url,omitempty"`
	Items       []*ExtractedItem `json:"items"`
}

// ExtractedItem is a normalized line item prior to persistence.
type ExtractedItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// PriceAlert records a detected price increase between a new line item and
// the most recent prior purchase of the same product by the same user.
type PriceAlert struct {
	Product       string  `json:"product"`
	PreviousPrice float64 `json:"previous_price"`
	NewPrice      float64 `json:"new_price"`
}

// Delta returns the absolute price increase.
func (a PriceAlert) Delta() float64 {
	return a.NewPrice - a.PreviousPrice
}

// Percent returns the relative increase in percent. Historic rows are
// never negative but may hold a zero price, so guard the division.
func (a PriceAlert) Percent() float64 {
	if a.PreviousPrice == 0 {
		return 0
	}
	return a.Delta() / a.PreviousPrice * 100
}
