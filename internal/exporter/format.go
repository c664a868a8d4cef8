package exporter

import (
	"strconv"

	"fishintel/pkg/contracts/domain"
)

// FormatFloat renders f with the fewest digits that round-trip exactly
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatNull renders a nullable measure; absent values become empty cells
func FormatNull(n domain.NullFloat) string {
	if !n.Valid {
		return ""
	}
	return FormatFloat(n.Float64)
}

// FormatInt formats an integer for CSV output
func FormatInt(i int) string {
	return strconv.Itoa(i)
}
