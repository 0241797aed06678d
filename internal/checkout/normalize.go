package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/safar/furnishop/internal/database"
	"github.com/shopspring/decimal"
)

// LineItem is the canonical form of one purchased line.
type LineItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Field aliases accepted from clients, in lookup order.
var (
	productIDKeys = []string{"product_id", "productId", "product", "id", "_id"}
	quantityKeys  = []string{"quantity", "qty"}
	priceKeys     = []string{"price", "unit_price", "unitPrice", "order_price"}
)

// LineItemError reports a line item field whose JSON shape is not one of the
// recognized forms.
type LineItemError struct {
	Index int
	Field string
	Got   string
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("item %d: unrecognized %s value %s", e.Index, e.Field, e.Got)
}

func (e *LineItemError) Unwrap() error { return database.ErrInvalidInput }

// NormalizeLineItems maps raw client line items onto LineItem. Items with no
// product id are skipped and counted; a missing or unusable quantity becomes 1
// and a missing or unusable price becomes 0.
func NormalizeLineItems(raws []json.RawMessage) (items []LineItem, skipped int, err error) {
	for i, raw := range raws {
		item, ok, err := normalizeLineItem(i, raw)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func normalizeLineItem(index int, raw json.RawMessage) (LineItem, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return LineItem{}, false, &LineItemError{Index: index, Field: "item", Got: describe(raw)}
	}

	item := LineItem{Quantity: 1, Price: decimal.Zero}

	productRaw, productKey := lookup(fields, productIDKeys)
	id, nestedPrice, err := parseProductID(productRaw)
	if err != nil {
		return LineItem{}, false, &LineItemError{Index: index, Field: productKey, Got: describe(productRaw)}
	}
	if id == "" {
		return LineItem{}, false, nil
	}
	item.ProductID = id

	if qtyRaw, key := lookup(fields, quantityKeys); qtyRaw != nil {
		qty, err := parseQuantity(qtyRaw)
		if err != nil {
			return LineItem{}, false, &LineItemError{Index: index, Field: key, Got: describe(qtyRaw)}
		}
		item.Quantity = qty
	}

	priceRaw, key := lookup(fields, priceKeys)
	if priceRaw == nil {
		priceRaw = nestedPrice
	}
	if priceRaw != nil {
		price, err := parsePrice(priceRaw)
		if err != nil {
			return LineItem{}, false, &LineItemError{Index: index, Field: key, Got: describe(priceRaw)}
		}
		item.Price = price
	}

	return item, true, nil
}

// lookup returns the first alias present with a non-null value.
func lookup(fields map[string]json.RawMessage, keys []string) (json.RawMessage, string) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isNull(v) {
			return v, k
		}
	}
	return nil, keys[0]
}

// parseProductID accepts a string, a number, or an embedded product object carrying
// "_id" or "id". An embedded product may also carry its price.
func parseProductID(raw json.RawMessage) (string, json.RawMessage, error) {
	if raw == nil {
		return "", nil, nil
	}

	switch kind(raw) {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", nil, err
		}
		return strings.TrimSpace(s), nil, nil
	case 'n':
		return string(bytes.TrimSpace(raw)), nil, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", nil, err
		}
		idRaw, _ := lookup(obj, []string{"_id", "id"})
		if idRaw == nil || kind(idRaw) != '"' {
			return "", nil, fmt.Errorf("product object without id")
		}
		var s string
		if err := json.Unmarshal(idRaw, &s); err != nil {
			return "", nil, err
		}
		nested, _ := lookup(obj, priceKeys)
		return strings.TrimSpace(s), nested, nil
	}
	return "", nil, fmt.Errorf("unsupported product id shape")
}

func parseQuantity(raw json.RawMessage) (int, error) {
	var f float64
	switch kind(raw) {
	case 'n':
		if err := json.Unmarshal(raw, &f); err != nil {
			return 1, nil
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 1, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 1, nil
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported quantity shape")
	}

	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 1, nil
	}
	return int(f), nil
}

func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch kind(raw) {
	case 'n', '"':
		if err := d.UnmarshalJSON(raw); err != nil {
			return decimal.Zero, nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unsupported price shape")
	}

	if d.IsNegative() {
		return decimal.Zero, nil
	}
	return d, nil
}

// kind classifies a JSON value by its first byte: '"' string, 'n' number,
// '{' object, '[' array, 'b' bool, 0 null or empty.
func kind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	switch c := trimmed[0]; {
	case c == '"' || c == '{' || c == '[':
		return c
	case c == 't' || c == 'f':
		return 'b'
	case c == 'n':
		return 0
	default:
		return 'n'
	}
}

func isNull(raw json.RawMessage) bool {
	return kind(raw) == 0
}

func describe(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	if s == "" {
		s = "<empty>"
	}
	return s
}
