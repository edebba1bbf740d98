package shipping

import "github.com/shopspring/decimal"

// RoundCents rounds a currency amount to two decimals, half away from zero.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// sumCents adds amounts at full precision and rounds the result once.
func sumCents(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}
