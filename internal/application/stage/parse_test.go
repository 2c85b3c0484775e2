package stage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPhone(t *testing.T) {
	phone, ok := ExtractPhone("my number is 9876543210 thanks")
	require.True(t, ok)
	assert.Equal(t, "9876543210", phone)

	_, ok = ExtractPhone("call me on 12345")
	assert.False(t, ok)
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"lakh shorthand", "i need 5 lakh", "500000", true},
		{"fractional lakhs", "around 7.5 lakhs please", "750000", true},
		{"lac spelling", "2 lac rupees", "200000", true},
		{"rupee symbol with commas", "give me ₹5,00,000", "500000", true},
		{"rs prefix", "rs 250000", "250000", true},
		{"bare figure", "i want 300000 for a car", "300000", true},
		{"no amount", "how much can i get", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
					"got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractTenureMonths(t *testing.T) {
	months, ok := ExtractTenureMonths("5 lakh for 36 months")
	require.True(t, ok)
	assert.Equal(t, 36, months)

	months, ok = ExtractTenureMonths("over 3 years maybe")
	require.True(t, ok)
	assert.Equal(t, 36, months)

	_, ok = ExtractTenureMonths("as long as possible")
	assert.False(t, ok)
}

func TestExtractIncome(t *testing.T) {
	income, ok := ExtractIncome("my salary is 85,000 per month")
	require.True(t, ok)
	assert.True(t, income.Equal(decimal.NewFromInt(85000)))
}
