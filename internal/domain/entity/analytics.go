package entity

// SpendSummary aggregates a user's purchasing over a date range.
type SpendSummary struct {
	TotalSpend     float64 `json:"total_spend"`
	InvoiceCount   int     `json:"invoice_count"`
	VendorCount    int     `json:"vendor_count"`
	TopProduct     string  `json:"top_product"`
	TopProductHits int     `json:"top_product_hits"`
}

// ProductStat aggregates all purchases of one product for a user.
type ProductStat struct {
	Description   string  `json:"description"`
	TotalSpend    float64 `json:"total_spend"`
	TotalQuantity float64 `json:"total_quantity"`
	AvgUnitPrice  float64 `json:"avg_unit_price"`
	TopVendor     string  `json:"top_vendor"`
}

// PricePoint is one observation in a product's unit-price time series.
type PricePoint struct {
	Date      string  `json:"date"`
	UnitPrice float64 `json:"unit_price"`
	Vendor    string  `json:"vendor"`
}
