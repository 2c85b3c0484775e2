package stage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	phonePattern = regexp.MustCompile(`\b(\d{10})\b`)

	// "5 lakh", "7.5 lakhs", "2 lac"
	lakhPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:lakhs?|lacs?)\b`)

	// "₹5,00,000", "rs 500000", "inr 85,000", "rupees 50000"
	currencyPattern = regexp.MustCompile(`(?:₹|rs\.?\s*|inr\s*|rupees?\s*)([\d,]+)`)

	// bare figures of at least four digits, commas allowed
	bareAmountPattern = regexp.MustCompile(`\b(\d[\d,]{3,})\b`)

	tenureMonthsPattern = regexp.MustCompile(`(\d{1,3})\s*(?:months?|mos?)\b`)
	tenureYearsPattern  = regexp.MustCompile(`(\d{1,2})\s*(?:years?|yrs?)\b`)
)

// ExtractPhone pulls a 10-digit phone number out of free text.
func ExtractPhone(text string) (string, bool) {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractAmount pulls a loan amount out of free text. Lakh figures are
// converted to rupees; currency-marked and bare comma-grouped figures are
// taken as rupees directly. Text is expected to be lower-cased.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	if m := lakhPattern.FindStringSubmatch(text); m != nil {
		lakhs, err := decimal.NewFromString(m[1])
		if err == nil {
			return lakhs.Mul(decimal.NewFromInt(100_000)), true
		}
	}
	if m := currencyPattern.FindStringSubmatch(text); m != nil {
		return parsePlainAmount(m[1])
	}
	if m := bareAmountPattern.FindStringSubmatch(text); m != nil {
		return parsePlainAmount(m[1])
	}
	return decimal.Zero, false
}

// ExtractIncome pulls a monthly income figure out of free text.
func ExtractIncome(text string) (decimal.Decimal, bool) {
	return ExtractAmount(text)
}

// ExtractTenureMonths pulls a tenure out of free text, accepting either
// months or years.
func ExtractTenureMonths(text string) (int, bool) {
	if m := tenureMonthsPattern.FindStringSubmatch(text); m != nil {
		months, err := strconv.Atoi(m[1])
		if err == nil && months > 0 {
			return months, true
		}
	}
	if m := tenureYearsPattern.FindStringSubmatch(text); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil && years > 0 {
			return years * 12, true
		}
	}
	return 0, false
}

func parsePlainAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return amount, true
}
