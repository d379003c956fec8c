package dedupe

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceTokenPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice reads the first numeric token of a free-form price string.
// "$1,299.00" is 1299; "Call for price" and nil are nil.
func ParsePrice(s *string) *float64 {
	if s == nil {
		return nil
	}
	token := priceTokenPattern.FindString(*s)
	if token == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return nil
	}
	f := d.Round(2).InexactFloat64()
	return &f
}
