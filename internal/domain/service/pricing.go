package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
)

// ErrNoEligibleOffer is returned when the catalog holds no active personal
// loan offer for the customer.
var ErrNoEligibleOffer = errors.New("no eligible personal loan offer")

// Validity windows for priced offers.
const (
	ProvisionalOfferValidity = 30 * 24 * time.Hour
	FinalOfferValidity       = 7 * 24 * time.Hour
)

// Rate adjustment rules applied after credit assessment. Scores of 800 and
// above earn a 50 bps discount, floored at 9.50%; scores below 700 pay a
// 100 bps premium.
const (
	excellentScoreThreshold = 800
	excellentDiscountBps    = 50
	rateFloorBps            = 950
	subprimeScoreThreshold  = 700
	subprimePremiumBps      = 100
)

// Quote is a priced repayment summary for a principal, rate, and tenure.
type Quote struct {
	EMI           decimal.Decimal
	TotalPayable  decimal.Decimal
	TotalInterest decimal.Decimal
}

// ComputeQuote prices the standard fixed-payment loan. The EMI is rounded to
// the nearest currency unit; totals derive from the rounded EMI.
func ComputeQuote(principal decimal.Decimal, annualRateBps, termMonths int) (Quote, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return Quote{}, errors.New("principal must be positive")
	}
	if termMonths <= 0 {
		return Quote{}, errors.New("term months must be positive")
	}
	if annualRateBps < 0 {
		return Quote{}, errors.New("interest rate must not be negative")
	}

	emi := model.MonthlyInstallment(principal, annualRateBps, termMonths).Round(0)
	total := emi.Mul(decimal.NewFromInt(int64(termMonths)))
	return Quote{
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: total.Sub(principal),
	}, nil
}

// SelectCatalogOffer picks the personal loan offer from the customer's
// pre-approved catalog entries, preferring the highest ceiling.
func SelectCatalogOffer(offers []model.CatalogOffer) (model.CatalogOffer, error) {
	var best model.CatalogOffer
	found := false
	for _, o := range offers {
		if o.ProductType != model.ProductPersonalLoan || o.Status != model.OfferStatusActive {
			continue
		}
		if !found || o.MaxAmount.GreaterThan(best.MaxAmount) {
			best = o
			found = true
		}
	}
	if !found {
		return model.CatalogOffer{}, ErrNoEligibleOffer
	}
	return best, nil
}

// BuildProvisionalOffer prices a catalog offer for the requested amount and
// tenure using the catalog rate. The amount is capped at the offer ceiling.
func BuildProvisionalOffer(
	catalog model.CatalogOffer,
	requested decimal.Decimal,
	tenureMonths int,
	now time.Time,
) (model.LoanOffer, error) {
	amount := decimal.Min(requested, catalog.MaxAmount)
	quote, err := ComputeQuote(amount, catalog.InterestRateBps, tenureMonths)
	if err != nil {
		return model.LoanOffer{}, err
	}

	return model.LoanOffer{
		OfferID:         catalog.OfferID,
		ProductType:     catalog.ProductType,
		Amount:          amount,
		InterestRateBps: catalog.InterestRateBps,
		TenureMonths:    tenureMonths,
		EMI:             quote.EMI,
		TotalPayable:    quote.TotalPayable,
		TotalInterest:   quote.TotalInterest,
		Terms: model.OfferTerms{
			ProcessingFeeBps:  catalog.ProcessingFeeBps,
			PrepaymentAllowed: true,
		},
		ValidUntil: now.Add(ProvisionalOfferValidity),
		CreatedAt:  now,
	}, nil
}

// RiskAdjustedRateBps applies the score-based adjustment to a base rate.
func RiskAdjustedRateBps(baseRateBps, score int) int {
	switch {
	case score >= excellentScoreThreshold:
		adjusted := baseRateBps - excellentDiscountBps
		if adjusted < rateFloorBps {
			return rateFloorBps
		}
		return adjusted
	case score < subprimeScoreThreshold:
		return baseRateBps + subprimePremiumBps
	default:
		return baseRateBps
	}
}

// BuildFinalOffer re-prices the selected offer after credit assessment. The
// amount is capped at both the catalog ceiling and the assessed maximum, and
// the rate carries the risk adjustment.
func BuildFinalOffer(
	catalog model.CatalogOffer,
	assessment model.CreditAssessment,
	requested decimal.Decimal,
	tenureMonths int,
	now time.Time,
) (model.LoanOffer, error) {
	if !assessment.Approved() {
		return model.LoanOffer{}, errors.New("assessment does not permit an offer")
	}

	amount := decimal.Min(requested, catalog.MaxAmount)
	if assessment.MaxEligibleAmount.GreaterThan(decimal.Zero) {
		amount = decimal.Min(amount, assessment.MaxEligibleAmount)
	}

	rateBps := RiskAdjustedRateBps(catalog.InterestRateBps, assessment.Score)
	quote, err := ComputeQuote(amount, rateBps, tenureMonths)
	if err != nil {
		return model.LoanOffer{}, err
	}

	return model.LoanOffer{
		OfferID:         uuid.New().String(),
		ProductType:     catalog.ProductType,
		Amount:          amount,
		InterestRateBps: rateBps,
		TenureMonths:    tenureMonths,
		EMI:             quote.EMI,
		TotalPayable:    quote.TotalPayable,
		TotalInterest:   quote.TotalInterest,
		Terms: model.OfferTerms{
			ProcessingFeeBps:  catalog.ProcessingFeeBps,
			PrepaymentAllowed: true,
		},
		ValidUntil: now.Add(FinalOfferValidity),
		CreatedAt:  now,
	}, nil
}
