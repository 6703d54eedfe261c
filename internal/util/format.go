package util

import "github.com/shopspring/decimal"

// MarketPriceMarker is what the view shows for price/total on market orders.
const MarketPriceMarker = "Market Price"

const displayPlaces = 4

// FormatAmount is the single display-formatting policy: fixed 4 fractional
// digits, round half away from zero. Internal arithmetic stays unrounded.
func FormatAmount(v decimal.Decimal) string {
	return v.StringFixed(displayPlaces)
}

// ParseInput parses a user-entered numeric field. Non-numeric input counts
// as zero for derived computation; the raw string is preserved by the caller.
func ParseInput(raw string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}

	return v
}
