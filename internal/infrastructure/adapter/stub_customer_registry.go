package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
)

// StubCustomerRegistry serves a fixed set of customer profiles, standing in
// for the bank's CRM until the real integration lands.
type StubCustomerRegistry struct {
	byPhone map[string]model.CustomerProfile
}

// NewStubCustomerRegistry creates a registry with the demo customer base.
func NewStubCustomerRegistry() *StubCustomerRegistry {
	profiles := []model.CustomerProfile{
		{
			ID:             "CUST001",
			Name:           "Raj Sharma",
			Phone:          "9876543210",
			Email:          "raj.sharma@example.com",
			Address:        "12 Residency Road, Bangalore 560025",
			PAN:            "ABCDE1234F",
			AccountNumber:  "50100123456789",
			KYCStatus:      model.KYCStatusVerified,
			MonthlyIncome:  decimal.NewFromInt(85000),
			EmploymentType: "SALARIED",
			CompanyName:    "TechCorp Solutions",
		},
		{
			ID:             "CUST002",
			Name:           "Priya Patel",
			Phone:          "9876543211",
			Email:          "priya.patel@example.com",
			Address:        "7 Marine Drive, Mumbai 400020",
			PAN:            "FGHIJ5678K",
			AccountNumber:  "50100987654321",
			KYCStatus:      model.KYCStatusVerified,
			MonthlyIncome:  decimal.NewFromInt(62000),
			EmploymentType: "SELF_EMPLOYED",
			CompanyName:    "Patel Textiles",
		},
	}

	byPhone := make(map[string]model.CustomerProfile, len(profiles))
	for _, p := range profiles {
		byPhone[p.Phone] = p
	}
	return &StubCustomerRegistry{byPhone: byPhone}
}

// LookupByPhone resolves a customer by registered phone number.
func (r *StubCustomerRegistry) LookupByPhone(_ context.Context, phone string) (model.CustomerProfile, error) {
	p, ok := r.byPhone[phone]
	if !ok {
		return model.CustomerProfile{}, port.ErrCustomerNotFound
	}
	return p.Clone(), nil
}
