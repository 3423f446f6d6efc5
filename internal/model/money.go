package model

import (
	"fmt"
	"math"
)

// PoundsToPence converts a GBP amount to integer pence, rounding half away from zero
func PoundsToPence(gbp float64) int64 {
	return int64(math.Round(gbp * 100))
}

// FormatPence renders an amount in pence as pounds, e.g. 2050 -> "£20.50"
func FormatPence(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s£%d.%02d", sign, cents/100, cents%100)
}
