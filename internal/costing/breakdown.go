package costing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Costs is the cost breakdown shared by inquiries and bills.
type Costs struct {
	BaseCost     float64
	PackagingFee float64
	LiquorCost   float64
	FinalAmount  float64
}

// Matches reports whether a line feeds the cost field of kind. A line tagged
// country, packing or liquor feeds only that field. Untagged and manual lines are
// matched on their description, independently per field: the destination country
// name or "country" for country, "pack" for packing, "liquor" for liquor.
func Matches(line LineItem, kind LineType, destinationCountry string) bool {
	switch tag := LineType(strings.ToLower(strings.TrimSpace(string(line.Type)))); tag {
	case TypeCountry, TypePacking, TypeLiquor:
		return tag == kind
	}

	description := strings.TrimSpace(line.Description)
	lower := strings.ToLower(description)
	switch kind {
	case TypeCountry:
		return (destinationCountry != "" && strings.EqualFold(description, strings.TrimSpace(destinationCountry))) ||
			strings.Contains(lower, "country")
	case TypePacking:
		return strings.Contains(lower, "pack")
	case TypeLiquor:
		return strings.Contains(lower, "liquor")
	}
	return false
}

// Breakdown is the classification of a set of lines.
type Breakdown struct {
	Total       float64
	Country     *LineItem
	Packing     *LineItem
	Liquor      float64
	LiquorLines int
}

// Summarize totals the lines, picks the first country and the first packing line,
// and sums every liquor line. A line may be both the packing pick and a liquor line.
func Summarize(lines []LineItem, destinationCountry string) Breakdown {
	var b Breakdown
	liquor := decimal.Zero
	for i := range lines {
		line := &lines[i]
		if b.Country == nil && Matches(*line, TypeCountry, destinationCountry) {
			b.Country = line
		}
		if b.Packing == nil && Matches(*line, TypePacking, destinationCountry) {
			b.Packing = line
		}
		if Matches(*line, TypeLiquor, destinationCountry) {
			liquor = liquor.Add(decimal.NewFromFloat(line.TotalAmount))
			b.LiquorLines++
		}
	}
	b.Total = Sum(lines)
	b.Liquor = liquor.InexactFloat64()
	return b
}

// ForNewBill derives the lines and costs of a bill generated from an inquiry.
// With no lines (items == nil) the inquiry's costs carry over unchanged. With
// lines, the final amount is their sum (the inquiry's when the sum is 0); the
// country and packing lines replace base cost and packaging fee when their total
// is non-zero; liquor cost becomes the sum of the liquor lines.
func ForNewBill(items []LineInput, inquiry Costs, destinationCountry string) ([]LineItem, Costs) {
	if items == nil {
		return []LineItem{}, inquiry
	}

	lines := NormalizeLines(items, ModeCreate)
	costs := inquiry

	b := Summarize(lines, destinationCountry)
	if b.Total > 0 {
		costs.FinalAmount = b.Total
	}
	if len(lines) == 0 {
		return lines, costs
	}

	if b.Country != nil && b.Country.TotalAmount != 0 {
		costs.BaseCost = b.Country.TotalAmount
	}
	if b.Packing != nil && b.Packing.TotalAmount != 0 {
		costs.PackagingFee = b.Packing.TotalAmount
	}
	costs.LiquorCost = b.Liquor
	return lines, costs
}

// ForBillUpdate re-derives a bill's costs from edited lines. The final amount is
// always the sum of the lines. Base cost and packaging fee follow their lines when
// present with a non-zero total; liquor cost is replaced only when at least one
// liquor line exists.
func ForBillUpdate(items []LineInput, current Costs, destinationCountry string) ([]LineItem, Costs) {
	lines := NormalizeLines(items, ModeUpdate)
	costs := current

	b := Summarize(lines, destinationCountry)
	costs.FinalAmount = b.Total
	if b.Country != nil && b.Country.TotalAmount != 0 {
		costs.BaseCost = b.Country.TotalAmount
	}
	if b.Packing != nil && b.Packing.TotalAmount != 0 {
		costs.PackagingFee = b.Packing.TotalAmount
	}
	if b.LiquorLines > 0 {
		costs.LiquorCost = b.Liquor
	}
	return lines, costs
}
