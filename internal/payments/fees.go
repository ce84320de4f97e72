package payments

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountPattern   = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)
	currencyPattern = regexp.MustCompile(`[A-Z]{3}`)
)

// ParseFeeAmount extracts the numeric amount from a category fee string
// such as "USD 150.50" or "RWF 1,250.00". The first numeric run wins;
// thousands separators are stripped. Unparseable fees are 0.
func ParseFeeAmount(fee string) float64 {
	match := amountPattern.FindString(fee)
	if match == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return amount
}

// RequiresPayment reports whether a category fee needs a checkout session.
// Free markers ("FREE", "$0") and a zero parsed amount mean no payment.
func RequiresPayment(fee string) bool {
	upper := strings.ToUpper(fee)
	if strings.Contains(upper, "FREE") || strings.Contains(upper, "$0") {
		return false
	}
	return ParseFeeAmount(fee) != 0
}

// ExtractCurrency returns the first run of three consecutive uppercase
// letters in the fee string, defaulting to USD.
func ExtractCurrency(fee string) string {
	if c := currencyPattern.FindString(fee); c != "" {
		return c
	}
	return "USD"
}
