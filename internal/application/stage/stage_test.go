package stage

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Shared fakes and fixtures
// ---------------------------------------------------------------------------

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func msg(text string) Message {
	return Message{Text: text, Received: testNow}
}

func sessionAt(state valueobject.ConversationState) *model.Session {
	s := model.NewSession("sess-test", testNow)
	s.State = state
	s.DrainEvents()
	return s
}

func identifiedSessionAt(state valueobject.ConversationState) *model.Session {
	s := sessionAt(state)
	profile := model.CustomerProfile{
		ID:            "CUST001",
		Name:          "Raj Sharma",
		Phone:         "9876543210",
		Email:         "raj.sharma@example.com",
		PAN:           "ABCDE1234F",
		KYCStatus:     model.KYCStatusVerified,
		MonthlyIncome: decimal.NewFromInt(85000),
	}
	s.Profile = &profile
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeRegistry struct {
	profiles map[string]model.CustomerProfile
	err      error
}

func (f fakeRegistry) LookupByPhone(_ context.Context, phone string) (model.CustomerProfile, error) {
	if f.err != nil {
		return model.CustomerProfile{}, f.err
	}
	p, ok := f.profiles[phone]
	if !ok {
		return model.CustomerProfile{}, port.ErrCustomerNotFound
	}
	return p, nil
}

type fakeCatalog struct {
	offers []model.CatalogOffer
	err    error
}

func (f fakeCatalog) PreApprovedOffers(_ context.Context, _ string) ([]model.CatalogOffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.offers) == 0 {
		return nil, port.ErrNoOffers
	}
	return f.offers, nil
}

type fakeSink struct {
	stored []string
	err    error
}

func (f *fakeSink) Store(_ context.Context, kind string, _ any) (model.DocumentReference, error) {
	if f.err != nil {
		return model.DocumentReference{}, f.err
	}
	f.stored = append(f.stored, kind)
	return model.DocumentReference{
		ID:       "doc-" + kind,
		Kind:     kind,
		Location: "memory://documents/doc-" + kind,
		IssuedAt: testNow,
	}, nil
}

func personalLoanCatalog() []model.CatalogOffer {
	return []model.CatalogOffer{{
		OfferID:          "OFFER001",
		CustomerID:       "CUST001",
		ProductType:      model.ProductPersonalLoan,
		MaxAmount:        decimal.NewFromInt(800000),
		InterestRateBps:  1050,
		ProcessingFeeBps: 100,
		MinTenureMonths:  12,
		MaxTenureMonths:  60,
		Status:           model.OfferStatusActive,
	}}
}
