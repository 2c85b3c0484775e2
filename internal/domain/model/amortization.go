package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationEntry is an immutable value object representing one period in a
// repayment schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// GenerateAmortizationSchedule computes a standard fixed-payment amortization
// schedule.
//
// Parameters:
//   - principal:     the loan amount
//   - annualRateBps: annual interest rate in basis points (e.g. 1050 = 10.50%)
//   - termMonths:    number of monthly periods
//   - startDate:     the date from which the first payment is due (one month later)
//
// The calculation uses:
//
//	monthlyRate = annualRateBps / 10_000 / 12
//	payment     = P * r * (1+r)^n / ((1+r)^n - 1)
func GenerateAmortizationSchedule(
	principal decimal.Decimal,
	annualRateBps int,
	termMonths int,
	startDate time.Time,
) []AmortizationEntry {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	monthlyPayment := MonthlyInstallment(principal, annualRateBps, termMonths)
	monthlyRateDec := monthlyRate(annualRateBps)

	schedule := make([]AmortizationEntry, 0, termMonths)
	remaining := principal

	for period := 1; period <= termMonths; period++ {
		dueDate := startDate.AddDate(0, period, 0)

		interest := remaining.Mul(monthlyRateDec).Round(2)
		principalPart := monthlyPayment.Sub(interest)

		// Last period: adjust for rounding so balance reaches exactly zero.
		if period == termMonths {
			principalPart = remaining
			interest = remaining.Mul(monthlyRateDec).Round(2)
			monthlyPayment = principalPart.Add(interest)
		}

		remaining = remaining.Sub(principalPart)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          dueDate,
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}

	return schedule
}

// MonthlyInstallment computes the fixed monthly payment (EMI) for the given
// principal, annual rate in basis points, and term. A zero rate degrades to
// an even principal split. The result is rounded to two decimal places.
func MonthlyInstallment(principal decimal.Decimal, annualRateBps, termMonths int) decimal.Decimal {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	if annualRateBps == 0 {
		// Zero-interest: even split.
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	// Convert basis points to a monthly decimal rate using float64 for the
	// power calculation, then switch back to decimal for monetary arithmetic.
	rate := float64(annualRateBps) / 10_000.0 / 12.0
	factor := math.Pow(1+rate, float64(termMonths))
	payment := principal.InexactFloat64() * rate * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

func monthlyRate(annualRateBps int) decimal.Decimal {
	return decimal.NewFromInt(int64(annualRateBps)).
		Div(decimal.NewFromInt(10_000)).
		Div(decimal.NewFromInt(12))
}
