package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit grade bands derived from the bureau score.
const (
	CreditGradeExcellent = "EXCELLENT"
	CreditGradeGood      = "GOOD"
	CreditGradeFair      = "FAIR"
	CreditGradePoor      = "POOR"
)

// Risk tiers used for rate adjustment and reporting.
const (
	RiskTierLow    = "LOW"
	RiskTierMedium = "MEDIUM"
	RiskTierHigh   = "HIGH"
)

// Eligibility decisions produced by the assessment.
const (
	EligibilityApproved       = "APPROVED"
	EligibilityConditional    = "CONDITIONAL"
	EligibilityReviewRequired = "REVIEW_REQUIRED"
	EligibilityRejected       = "REJECTED"
)

// CreditAssessment is the outcome of a bureau check plus the in-house
// eligibility tiering applied to it.
type CreditAssessment struct {
	CustomerID        string
	Score             int
	Grade             string
	RiskTier          string
	Eligibility       string
	MaxEligibleAmount decimal.Decimal
	BaseRateBps       int
	ActiveLoans       int
	PaymentHistory    string
	CheckedAt         time.Time
}

// Approved reports whether the assessment permits an offer to be extended.
func (a CreditAssessment) Approved() bool {
	return a.Eligibility == EligibilityApproved || a.Eligibility == EligibilityConditional
}

// Clone returns a copy of the assessment.
func (a CreditAssessment) Clone() CreditAssessment {
	return a
}
