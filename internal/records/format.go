package records

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with "." thousands grouping, rounded to units.
func FormatAmount(d decimal.Decimal) string {
	return humanize.FormatInteger("#.###,", int(d.Round(0).IntPart()))
}

// SplitNationalID splits "12.345.678-9" into its digit body "12345678" and
// check digit "9". Dots and spaces are dropped from the body.
func SplitNationalID(id string) (body, check string) {
	id = strings.TrimSpace(id)
	body, check, _ = strings.Cut(id, "-")
	body = strings.NewReplacer(".", "", " ", "").Replace(body)
	return body, strings.ToUpper(strings.TrimSpace(check))
}

// FirstToken returns the first space-separated word of s.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
