package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Credit Bureau Adapter – structured for real integration
// ---------------------------------------------------------------------------

// Bureau identifies a credit bureau provider.
type Bureau string

const (
	BureauCIBIL    Bureau = "CIBIL"
	BureauExperian Bureau = "EXPERIAN"
	BureauEquifax  Bureau = "EQUIFAX"
)

// CreditBureauConfig holds configuration for the credit bureau adapter.
type CreditBureauConfig struct {
	// PrimaryBureau is the preferred bureau for credit pulls.
	PrimaryBureau Bureau
	// BaseURL is the base URL for the credit bureau API.
	BaseURL string
	// APIKey is the authentication credential for the bureau API.
	APIKey string
	// MaxRetries is the maximum number of retry attempts on transient failures.
	MaxRetries int
	// RetryBackoffMs is the base backoff duration in milliseconds between retries.
	RetryBackoffMs int
}

// DefaultCreditBureauConfig returns sensible defaults for development.
func DefaultCreditBureauConfig() CreditBureauConfig {
	return CreditBureauConfig{
		PrimaryBureau:  BureauCIBIL,
		BaseURL:        "https://api.creditbureau.example.com",
		APIKey:         "dev-api-key",
		MaxRetries:     3,
		RetryBackoffMs: 200,
	}
}

// BureauReport is a parsed credit report from a bureau.
type BureauReport struct {
	Bureau         Bureau
	TaxID          string
	Score          int
	ReportDate     time.Time
	ActiveLoans    int
	PaymentHistory string // "EXCELLENT", "GOOD", "FAIR", "POOR"
}

// ReportFetcher defines the interface for pulling reports from a bureau API.
// This enables testing with mock implementations.
type ReportFetcher interface {
	FetchReport(ctx context.Context, bureau Bureau, taxID string) (BureauReport, error)
}

// CreditBureauAdapter simulates credit bureau pulls and maps them to the
// bank's eligibility tiers. It implements port.CreditBureau and is designed
// to be swapped with a real HTTP-based implementation when integrating with
// CIBIL, Experian, or Equifax APIs.
type CreditBureauAdapter struct {
	config  CreditBureauConfig
	fetcher ReportFetcher // nil = use simulated responses
}

// NewCreditBureauAdapter creates a new adapter with the given configuration.
// If fetcher is nil, simulated responses are used (suitable for
// development/testing).
func NewCreditBureauAdapter(config CreditBureauConfig, fetcher ReportFetcher) *CreditBureauAdapter {
	return &CreditBureauAdapter{config: config, fetcher: fetcher}
}

// knownReports are the fixture tax IDs served with fixed scores so demo
// conversations are reproducible.
var knownReports = map[string]BureauReport{
	"ABCDE1234F": {Score: 820, ActiveLoans: 1, PaymentHistory: "EXCELLENT"},
	"FGHIJ5678K": {Score: 750, ActiveLoans: 2, PaymentHistory: "GOOD"},
}

// CheckCredit pulls the bureau report for the customer and applies the
// bank's eligibility tiering.
func (a *CreditBureauAdapter) CheckCredit(ctx context.Context, customerID, taxID string) (model.CreditAssessment, error) {
	if customerID == "" {
		return model.CreditAssessment{}, fmt.Errorf("customer ID is required")
	}
	if taxID == "" {
		return model.CreditAssessment{}, fmt.Errorf("tax ID is required")
	}

	var report BureauReport
	var err error
	if a.fetcher != nil {
		report, err = a.fetchWithRetry(ctx, taxID)
		if err != nil {
			return model.CreditAssessment{}, fmt.Errorf("credit bureau request failed: %w", err)
		}
	} else {
		report = a.simulateReport(taxID)
	}

	return a.toAssessment(customerID, report), nil
}

// fetchWithRetry calls the bureau API with exponential backoff retry logic.
func (a *CreditBureauAdapter) fetchWithRetry(ctx context.Context, taxID string) (BureauReport, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter.
			backoff := time.Duration(a.config.RetryBackoffMs) * time.Millisecond * (1 << uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
			select {
			case <-ctx.Done():
				return BureauReport{}, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		report, err := a.fetcher.FetchReport(ctx, a.config.PrimaryBureau, taxID)
		if err == nil {
			return report, nil
		}
		lastErr = err
	}

	return BureauReport{}, fmt.Errorf("exhausted %d retries: %w", a.config.MaxRetries, lastErr)
}

// simulateReport serves fixture tax IDs with fixed scores and derives a
// deterministic report from the tax ID hash for everyone else.
func (a *CreditBureauAdapter) simulateReport(taxID string) BureauReport {
	if report, ok := knownReports[taxID]; ok {
		report.Bureau = a.config.PrimaryBureau
		report.TaxID = taxID
		report.ReportDate = time.Now().UTC()
		return report
	}

	h := sha256.Sum256([]byte(taxID))
	score := 300 + int(binary.BigEndian.Uint32(h[:4])%551)

	paymentHistory := "GOOD"
	switch {
	case score >= 800:
		paymentHistory = "EXCELLENT"
	case score < 600:
		paymentHistory = "POOR"
	case score < 700:
		paymentHistory = "FAIR"
	}

	return BureauReport{
		Bureau:         a.config.PrimaryBureau,
		TaxID:          taxID,
		Score:          score,
		ReportDate:     time.Now().UTC(),
		ActiveLoans:    int(binary.BigEndian.Uint16(h[4:6]) % 5),
		PaymentHistory: paymentHistory,
	}
}

// toAssessment applies the eligibility tiers to a raw bureau score.
func (a *CreditBureauAdapter) toAssessment(customerID string, report BureauReport) model.CreditAssessment {
	assessment := model.CreditAssessment{
		CustomerID:     customerID,
		Score:          report.Score,
		Grade:          gradeFor(report.Score),
		RiskTier:       riskTierFor(report.Score),
		ActiveLoans:    report.ActiveLoans,
		PaymentHistory: report.PaymentHistory,
		CheckedAt:      time.Now().UTC(),
	}

	switch {
	case report.Score >= 750:
		assessment.Eligibility = model.EligibilityApproved
		assessment.MaxEligibleAmount = decimal.NewFromInt(1_000_000)
		assessment.BaseRateBps = 1050
	case report.Score >= 650:
		assessment.Eligibility = model.EligibilityApproved
		assessment.MaxEligibleAmount = decimal.NewFromInt(500_000)
		assessment.BaseRateBps = 1200
	case report.Score >= 550:
		assessment.Eligibility = model.EligibilityConditional
		assessment.MaxEligibleAmount = decimal.NewFromInt(200_000)
		assessment.BaseRateBps = 1400
	default:
		assessment.Eligibility = model.EligibilityRejected
	}

	return assessment
}

func gradeFor(score int) string {
	switch {
	case score >= 800:
		return model.CreditGradeExcellent
	case score >= 700:
		return model.CreditGradeGood
	case score >= 600:
		return model.CreditGradeFair
	default:
		return model.CreditGradePoor
	}
}

func riskTierFor(score int) string {
	switch {
	case score >= 750:
		return model.RiskTierLow
	case score >= 650:
		return model.RiskTierMedium
	default:
		return model.RiskTierHigh
	}
}
