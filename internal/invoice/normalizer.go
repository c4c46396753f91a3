package invoice

import (
	"fmt"
	"strconv"

	"github.com/sousbill/sousbill/internal/domain/entity"
	"go.uber.org/zap"
)

// ExtractionError is returned when the extraction gateway reported a
// failure inside its payload. It surfaces to the user verbatim and no
// persistence is attempted.
type ExtractionError struct {
	Message string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

// Normalizer validates and coerces a raw extraction payload into the
// canonical invoice shape. Malformed fields never abort normalization;
// every one degrades to a safe default. Only an error tag carried in the
// payload short-circuits the whole record.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new invoice normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts an untrusted extraction payload into a canonical
// ExtractedInvoice. Items without a description carry no comparable
// identity and are dropped.
func (n *Normalizer) Normalize(raw map[string]interface{}) (*entity.ExtractedInvoice, error) {
	if msg, ok := asString(raw["error"]); ok && msg != "" {
		return nil, &ExtractionError{Message: msg}
	}

	inv := &entity.ExtractedInvoice{
		Vendor:   stringOrDefault(raw["vendor"], ""),
		Date:     stringOrDefault(raw["date"], ""),
		Currency: stringOrDefault(raw["currency"], "EUR"),
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}

	if total, ok := asFloat(raw["total_amount"]); ok && total >= 0 {
		inv.TotalAmount = total
	} else if raw["total_amount"] != nil {
		n.logger.Debug("Invalid total_amount, defaulting to 0",
			zap.Any("raw_value", raw["total_amount"]))
	}

	rawItems, _ := raw["items"].([]interface{})
	for _, ri := range rawItems {
		m, ok := ri.(map[string]interface{})
		if !ok {
			n.logger.Debug("Dropping non-object item entry", zap.Any("raw_value", ri))
			continue
		}
		if item := n.normalizeItem(m); item != nil {
			inv.Items = append(inv.Items, item)
		}
	}

	n.logger.Info("Normalized extraction payload",
		zap.String("vendor", inv.Vendor),
		zap.String("date", inv.Date),
		zap.Float64("total_amount", inv.TotalAmount),
		zap.Int("item_count", len(inv.Items)))

	return inv, nil
}

// normalizeItem coerces one raw line item, or returns nil if the item has
// no usable description.
func (n *Normalizer) normalizeItem(m map[string]interface{}) *entity.ExtractedItem {
	desc, _ := asString(m["description"])
	if desc == "" {
		n.logger.Debug("Dropping item without description", zap.Any("raw_item", m))
		return nil
	}

	item := &entity.ExtractedItem{
		Description: desc,
		Quantity:    1,
	}

	if qty, ok := asFloat(m["quantity"]); ok && qty > 0 {
		item.Quantity = qty
	}
	if price, ok := asFloat(m["unit_price"]); ok && price >= 0 {
		item.UnitPrice = price
	}

	// The extraction may supply its own line total (discounts, weighed
	// goods). A sane upstream value wins over the computed product.
	if total, ok := asFloat(m["total"]); ok && total >= 0 {
		item.TotalPrice = total
	} else {
		item.TotalPrice = item.Quantity * item.UnitPrice
	}

	return item
}

// asString extracts a string value, reporting whether one was present.
func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// stringOrDefault returns the string value of v or def when v is absent,
// null or not a string.
func stringOrDefault(v interface{}, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// asFloat coerces JSON numbers and numeric strings to float64.
func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
