package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFeeAmount(t *testing.T) {
	tests := []struct {
		fee  string
		want float64
	}{
		{"USD 150.50", 150.50},
		{"RWF 1,250.00", 1250},
		{"150", 150},
		{"USD 25", 25},
		{"$ 99.99 early bird", 99.99},
		{"FREE", 0},
		{"", 0},
		{"USD 0.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.fee, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFeeAmount(tt.fee))
		})
	}
}

func TestRequiresPayment(t *testing.T) {
	assert.False(t, RequiresPayment("FREE"))
	assert.False(t, RequiresPayment("free of charge"))
	assert.False(t, RequiresPayment("$0"))
	assert.False(t, RequiresPayment("USD 0.00"))
	assert.False(t, RequiresPayment(""))
	assert.True(t, RequiresPayment("USD 25"))
	assert.True(t, RequiresPayment("RWF 1,250.00"))
}

func TestExtractCurrency(t *testing.T) {
	assert.Equal(t, "USD", ExtractCurrency("USD 150.50"))
	assert.Equal(t, "RWF", ExtractCurrency("early bird RWF 1,250.00"))
	assert.Equal(t, "USD", ExtractCurrency("150.00"))
	assert.Equal(t, "USD", ExtractCurrency(""))
}

func TestFeeRoundTrip(t *testing.T) {
	// The amount and currency recovered from a fee string are what the
	// payment initializer sends back out.
	fee := "RWF 1,250.00"
	assert.Equal(t, 1250.0, ParseFeeAmount(fee))
	assert.Equal(t, "RWF", ExtractCurrency(fee))
	assert.True(t, RequiresPayment(fee))
}
