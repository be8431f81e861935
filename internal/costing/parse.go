// Package costing turns free-form bill line items into normalized lines and derives
// the cost breakdown (base cost, packaging fee, liquor cost, final amount) from them.
//
// Malformed numeric input never fails an operation: it degrades to "absent",
// which callers map to null or 0 depending on the field.
package costing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// UnspecifiedQuantity is the placeholder staff enter when a line has no quantity.
const UnspecifiedQuantity = "__"

// quantityPattern accepts a number optionally followed by a volume or mass unit.
var quantityPattern = regexp.MustCompile(`(?i)^([-+]?(?:\d+(?:\.\d*)?|\.\d+))\s*(ml|ltr|litres?|liters?|l|kgs?|gms?|g)?$`)

// ParseNumber reads v as a finite number. It accepts JSON numbers and numeric
// strings; anything else reports ok=false.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParsePositive returns v as a number only when it parses and is greater than zero.
func ParsePositive(v any) *float64 {
	f, ok := ParseNumber(v)
	if !ok || f <= 0 {
		return nil
	}
	return &f
}

// ParseAmount returns v as a number, or 0 when it does not parse.
func ParseAmount(v any) float64 {
	f, _ := ParseNumber(v)
	return f
}

// ParseQuantity is the permissive quantity reader used when editing bills:
// "2 L", "1.5kg" and "3" all parse, the UnspecifiedQuantity placeholder and
// non-positive values yield nil.
func ParseQuantity(v any) *float64 {
	s, isString := v.(string)
	if !isString {
		return ParsePositive(v)
	}

	s = strings.TrimSpace(s)
	if s == "" || s == UnspecifiedQuantity {
		return nil
	}

	match := quantityPattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	return ParsePositive(match[1])
}
