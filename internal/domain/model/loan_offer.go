package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product types offered through the origination channel.
const (
	ProductPersonalLoan = "PERSONAL_LOAN"
	ProductBusinessLoan = "BUSINESS_LOAN"
)

// Catalog offer status values.
const (
	OfferStatusActive  = "ACTIVE"
	OfferStatusExpired = "EXPIRED"
)

// CatalogOffer is a pre-approved product ceiling held against a customer in
// the offer catalog. Rates and fees are in basis points.
type CatalogOffer struct {
	OfferID          string
	CustomerID       string
	ProductType      string
	MaxAmount        decimal.Decimal
	InterestRateBps  int
	ProcessingFeeBps int
	MinTenureMonths  int
	MaxTenureMonths  int
	Status           string
	ValidUntil       time.Time
	Features         []string
}

// Covers reports whether the requested amount fits under the offer ceiling.
func (o CatalogOffer) Covers(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(o.MaxAmount)
}

// OfferTerms carries the contractual fine print attached to a priced offer.
type OfferTerms struct {
	ProcessingFeeBps  int
	PrepaymentAllowed bool
	LatePaymentFee    decimal.Decimal
}

// LoanOffer is a fully priced quote for a specific amount and tenure. A
// provisional offer is computed from catalog rates during the sales stage;
// the final offer is re-priced after credit assessment.
type LoanOffer struct {
	OfferID         string
	ProductType     string
	Amount          decimal.Decimal
	InterestRateBps int
	TenureMonths    int
	EMI             decimal.Decimal
	TotalPayable    decimal.Decimal
	TotalInterest   decimal.Decimal
	Terms           OfferTerms
	ValidUntil      time.Time
	CreatedAt       time.Time
}

// Expired reports whether the offer validity window has lapsed.
func (o LoanOffer) Expired(now time.Time) bool {
	return now.After(o.ValidUntil)
}

// Clone returns a copy of the offer.
func (o LoanOffer) Clone() LoanOffer {
	return o
}
