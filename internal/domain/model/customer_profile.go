package model

import (
	"github.com/shopspring/decimal"
)

// KYC status values reported by the customer registry.
const (
	KYCStatusVerified = "VERIFIED"
	KYCStatusPending  = "PENDING"
	KYCStatusRejected = "REJECTED"
)

// CustomerProfile is the registry record for an identified customer. It is a
// read-only snapshot; corrections flow through the registry, not the session.
type CustomerProfile struct {
	ID            string
	Name          string
	Phone         string
	Email         string
	Address       string
	PAN           string
	AccountNumber string
	KYCStatus     string
	MonthlyIncome decimal.Decimal
	EmploymentType string
	CompanyName   string
}

// Clone returns a copy of the profile.
func (p CustomerProfile) Clone() CustomerProfile {
	return p
}
