package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/origination/internal/domain/valueobject"
)

func TestClassifyIntent_FirstMatchWins(t *testing.T) {
	rules := []IntentRule{
		{Tag: valueobject.IntentOfferAcceptance, Match: ContainsAny("accept", "yes")},
		{Tag: valueobject.IntentStatusCheck, Match: ContainsAny("status", "yes")},
	}

	got := ClassifyIntent("  YES, I accept  ", rules, valueobject.IntentGeneralUnderwriting)
	assert.Equal(t, valueobject.IntentOfferAcceptance, got)
}

func TestClassifyIntent_FallsBack(t *testing.T) {
	rules := []IntentRule{
		{Tag: valueobject.IntentRateInquiry, Match: ContainsAny("interest", "rate")},
	}

	got := ClassifyIntent("tell me a joke", rules, valueobject.IntentGeneralSales)
	assert.Equal(t, valueobject.IntentGeneralSales, got)
}

func TestContainsAny_Normalisation(t *testing.T) {
	rules := []IntentRule{
		{Tag: valueobject.IntentLoanInquiry, Match: ContainsAny("loan", "borrow")},
	}

	assert.Equal(t, valueobject.IntentLoanInquiry,
		ClassifyIntent("I want to BORROW some money", rules, valueobject.IntentGreeting))
}

func TestMatchesPattern(t *testing.T) {
	phone := regexp.MustCompile(`\b\d{10}\b`)
	rules := []IntentRule{
		{Tag: valueobject.IntentPhoneShared, Match: MatchesPattern(phone)},
	}

	assert.Equal(t, valueobject.IntentPhoneShared,
		ClassifyIntent("my number is 9876543210", rules, valueobject.IntentIdentityUnknown))
	assert.Equal(t, valueobject.IntentIdentityUnknown,
		ClassifyIntent("my number is 12345", rules, valueobject.IntentIdentityUnknown))
}

func TestAnyOf(t *testing.T) {
	pred := AnyOf(ContainsAny("emi"), ContainsAny("installment"))
	assert.True(t, pred("what is my emi"))
	assert.True(t, pred("monthly installment please"))
	assert.False(t, pred("hello"))
}
