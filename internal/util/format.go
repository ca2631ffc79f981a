package util

import (
	"strconv"
	"strings"
)

// FormatNumber formats an integer with comma thousands separators
func FormatNumber(n int) string {
	return groupDigits(strconv.Itoa(n))
}

// FormatTokens rounds a token figure to an integer (half to even) and
// groups its digits, so a mean of 1234.5 renders as "1,234".
func FormatTokens(v float64) string {
	return groupDigits(strconv.FormatFloat(v, 'f', 0, 64))
}

// FormatCurrency formats a dollar amount with the given number of fraction
// digits. Per-request costs need 6 digits to stay non-zero.
func FormatCurrency(amount float64, digits int) string {
	str := strconv.FormatFloat(amount, 'f', digits, 64)

	intPart, decPart, _ := strings.Cut(str, ".")
	intPart = groupDigits(intPart)
	if decPart == "" {
		return "$" + intPart
	}
	return "$" + intPart + "." + decPart
}

func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}
	return sign + string(result)
}
