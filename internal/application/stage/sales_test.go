package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/origination/internal/domain/valueobject"
)

func salesHandler(catalog fakeCatalog) Sales {
	return Sales{Catalog: catalog, Logger: testLogger()}
}

func TestSales_AmountPricesOfferAndAdvances(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	reply, err := h.HandleInquiry(context.Background(), s, msg("I need 5 lakh for 36 months"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateLoanApplication))
	require.NotNil(t, s.Context.SelectedOffer)
	assert.True(t, s.Context.SelectedOffer.Amount.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, 36, s.Context.SelectedOffer.TenureMonths)
	assert.True(t, s.Context.SelectedOffer.EMI.Equal(decimal.NewFromInt(16251)),
		"EMI %s", s.Context.SelectedOffer.EMI)
	assert.Contains(t, reply.Text, "16251")
	assert.Contains(t, reply.Text, "10.50")

	events := s.DrainEvents()
	var sawOfferSelected bool
	for _, e := range events {
		if e.EventType() == "origination.offer.selected" {
			sawOfferSelected = true
		}
	}
	assert.True(t, sawOfferSelected)
}

func TestSales_AmountAboveCeilingIsCapped(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	reply, err := h.HandleInquiry(context.Background(), s, msg("give me 12 lakh"))
	require.NoError(t, err)

	require.NotNil(t, s.Context.SelectedOffer)
	assert.True(t, s.Context.SelectedOffer.Amount.Equal(decimal.NewFromInt(800000)))
	assert.Contains(t, reply.Text, "pre-approved limit")
}

func TestSales_DefaultTenureApplied(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	_, err := h.HandleInquiry(context.Background(), s, msg("2 lakh please"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTenureMonths, s.Context.TenureMonths)
}

func TestSales_NoOffersStillAdvances(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{})

	reply, err := h.HandleInquiry(context.Background(), s, msg("5 lakh"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateLoanApplication))
	assert.Nil(t, s.Context.SelectedOffer)
	assert.Contains(t, reply.Text, "full application")
}

func TestSales_CatalogOutageDegrades(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{err: errors.New("catalog down")})

	reply, err := h.HandleInquiry(context.Background(), s, msg("5 lakh"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateProductInquiry))
	assert.Contains(t, reply.Text, "couldn't pull up")
}

func TestSales_RateInquiry(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	reply, err := h.HandleInquiry(context.Background(), s, msg("what's the interest rate?"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateProductInquiry))
	assert.Contains(t, reply.Text, "10.50%")
}

func TestSales_ConsentWithoutAmountPrompts(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	reply, err := h.HandleInquiry(context.Background(), s, msg("yes let's apply"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateProductInquiry))
	assert.Contains(t, reply.Text, "How much")
}

func TestSales_ApplicationConsentAdvancesToVerification(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	_, err := h.HandleInquiry(context.Background(), s, msg("5 lakh for 36 months"))
	require.NoError(t, err)
	require.True(t, s.State.Equal(valueobject.StateLoanApplication))

	reply, err := h.HandleApplication(context.Background(), s, msg("yes, let's proceed"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateVerification))
	assert.Contains(t, reply.Text, "verify")
}

func TestSales_ApplicationRepriceOnNewAmount(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	_, err := h.HandleInquiry(context.Background(), s, msg("5 lakh"))
	require.NoError(t, err)

	_, err = h.HandleApplication(context.Background(), s, msg("actually make it 2 lakh"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateLoanApplication))
	require.NotNil(t, s.Context.SelectedOffer)
	assert.True(t, s.Context.SelectedOffer.Amount.Equal(decimal.NewFromInt(200000)))
	assert.True(t, s.Context.SelectedOffer.EMI.Equal(decimal.NewFromInt(6500)),
		"EMI %s", s.Context.SelectedOffer.EMI)
}

func TestSales_ApplicationDecline(t *testing.T) {
	s := identifiedSessionAt(valueobject.StateProductInquiry)
	h := salesHandler(fakeCatalog{offers: personalLoanCatalog()})

	_, err := h.HandleInquiry(context.Background(), s, msg("5 lakh"))
	require.NoError(t, err)

	reply, err := h.HandleApplication(context.Background(), s, msg("not now, thanks"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateLoanApplication))
	assert.Contains(t, reply.Text, "30 days")
}
