package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hours converts a duration to hours rounded to two decimal places
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Milliseconds()).
		Div(decimal.NewFromInt(int64(time.Hour / time.Millisecond))).
		Round(2)
}

// FormatHours renders a duration like "1.50 hours"
func FormatHours(d time.Duration) string {
	return Hours(d).StringFixed(2) + " hours"
}

// WholeMinutes truncates a duration to full minutes
func WholeMinutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}
