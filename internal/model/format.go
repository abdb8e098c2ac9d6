package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders a whole-rupiah amount with Indonesian digit
// grouping, e.g. 2500000 -> "Rp 2.500.000".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return idPrinter.Sprintf("-Rp %v", number.Decimal(-amount))
	}
	return idPrinter.Sprintf("Rp %v", number.Decimal(amount))
}
