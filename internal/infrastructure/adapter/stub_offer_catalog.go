package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
)

// StubOfferCatalog serves fixed pre-approved offers per customer, standing
// in for the bank's offer management system.
type StubOfferCatalog struct {
	byCustomer map[string][]model.CatalogOffer
}

// NewStubOfferCatalog creates a catalog with the demo offer base.
func NewStubOfferCatalog() *StubOfferCatalog {
	validUntil := time.Now().AddDate(0, 1, 0)

	return &StubOfferCatalog{
		byCustomer: map[string][]model.CatalogOffer{
			"CUST001": {
				{
					OfferID:          "OFFER001",
					CustomerID:       "CUST001",
					ProductType:      model.ProductPersonalLoan,
					MaxAmount:        decimal.NewFromInt(800_000),
					InterestRateBps:  1050,
					ProcessingFeeBps: 100,
					MinTenureMonths:  12,
					MaxTenureMonths:  60,
					Status:           model.OfferStatusActive,
					ValidUntil:       validUntil,
					Features:         []string{"No prepayment charges", "Disbursal within 48 hours"},
				},
			},
			"CUST002": {
				{
					OfferID:          "OFFER002",
					CustomerID:       "CUST002",
					ProductType:      model.ProductPersonalLoan,
					MaxAmount:        decimal.NewFromInt(500_000),
					InterestRateBps:  1150,
					ProcessingFeeBps: 100,
					MinTenureMonths:  12,
					MaxTenureMonths:  48,
					Status:           model.OfferStatusActive,
					ValidUntil:       validUntil,
					Features:         []string{"No prepayment charges"},
				},
			},
		},
	}
}

// PreApprovedOffers returns the active offers for the customer.
func (c *StubOfferCatalog) PreApprovedOffers(_ context.Context, customerID string) ([]model.CatalogOffer, error) {
	offers, ok := c.byCustomer[customerID]
	if !ok || len(offers) == 0 {
		return nil, port.ErrNoOffers
	}
	out := make([]model.CatalogOffer, len(offers))
	copy(out, offers)
	return out, nil
}
