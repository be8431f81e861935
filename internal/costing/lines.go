package costing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LineType tags a line with the cost field it feeds.
type LineType string

const (
	TypeCountry LineType = "country"
	TypePacking LineType = "packing"
	TypeLiquor  LineType = "liquor"
	TypeManual  LineType = "manual"
)

// LineInput is a bill line as submitted by staff. Quantity, rate and amount may
// arrive as numbers or strings.
type LineInput struct {
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	Rate        any    `json:"rate"`
	Amount      any    `json:"amount"`
	Type        string `json:"type"`
}

// LineItem is a normalized, persisted bill line.
type LineItem struct {
	Description string   `json:"description"`
	Qty         *float64 `json:"qty"`
	Rate        *float64 `json:"rate"`
	TotalAmount float64  `json:"totalAmount"`
	Type        LineType `json:"type"`
}

// Mode selects how quantities are read.
type Mode int

const (
	// ModeCreate reads plain numeric quantities.
	ModeCreate Mode = iota
	// ModeUpdate additionally strips unit suffixes and honours UnspecifiedQuantity.
	ModeUpdate
)

// NormalizeLine computes a line's total: qty*rate when both are positive,
// otherwise the manual amount (0 when that is missing too).
func NormalizeLine(in LineInput, mode Mode) LineItem {
	var qty *float64
	if mode == ModeUpdate {
		qty = ParseQuantity(in.Quantity)
	} else {
		qty = ParsePositive(in.Quantity)
	}
	rate := ParsePositive(in.Rate)

	total := ParseAmount(in.Amount)
	if qty != nil && rate != nil {
		total = decimal.NewFromFloat(*qty).Mul(decimal.NewFromFloat(*rate)).InexactFloat64()
	}

	lineType := LineType(in.Type)
	if lineType == "" {
		lineType = TypeManual
	}

	return LineItem{
		Description: in.Description,
		Qty:         qty,
		Rate:        rate,
		TotalAmount: total,
		Type:        lineType,
	}
}

func NormalizeLines(in []LineInput, mode Mode) []LineItem {
	lines := make([]LineItem, 0, len(in))
	for _, item := range in {
		lines = append(lines, NormalizeLine(item, mode))
	}
	return lines
}

// Sum adds the line totals.
func Sum(lines []LineItem) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.TotalAmount))
	}
	return total.InexactFloat64()
}

// EncodeLines serializes lines for the items column. A nil slice encodes as [].
func EncodeLines(lines []LineItem) (datatypes.JSON, error) {
	if lines == nil {
		lines = []LineItem{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill items: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// storedLine mirrors LineItem with loosely typed fields. Older rows may hold
// numbers as strings.
type storedLine struct {
	Description any `json:"description"`
	Qty         any `json:"qty"`
	Rate        any `json:"rate"`
	TotalAmount any `json:"totalAmount"`
	Type        any `json:"type"`
}

func (l storedLine) item() LineItem {
	description, _ := l.Description.(string)
	lineType, _ := l.Type.(string)
	return LineItem{
		Description: description,
		Qty:         ParsePositive(l.Qty),
		Rate:        ParsePositive(l.Rate),
		TotalAmount: ParseAmount(l.TotalAmount),
		Type:        LineType(lineType),
	}
}

// DecodeLines reads a stored items value. Rows written by older clients hold the
// array serialized into a JSON string, so one level of string wrapping is
// unwrapped. Absent values decode to an empty slice; malformed values decode to
// an empty slice plus the parse error so the caller can log it. Elements that are
// not objects are skipped and reported; the remaining lines are kept.
func DecodeLines(raw []byte) ([]LineItem, error) {
	lines := []LineItem{}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return lines, nil
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return lines, fmt.Errorf("failed to parse items text: %w", err)
		}
		raw = []byte(strings.TrimSpace(text))
		if len(raw) == 0 {
			return lines, nil
		}
	}

	if raw[0] != '[' {
		return lines, fmt.Errorf("items is not an array")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return lines, fmt.Errorf("failed to parse items JSON: %w", err)
	}

	var errs []error
	for i, element := range elements {
		if bytes.Equal(bytes.TrimSpace(element), []byte("null")) {
			continue
		}
		var stored storedLine
		if err := json.Unmarshal(element, &stored); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		lines = append(lines, stored.item())
	}
	return lines, errors.Join(errs...)
}
