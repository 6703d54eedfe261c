package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whole", "50", "50.0000"},
		{"full precision kept", "50.125", "50.1250"},
		{"rounds half up", "0.00005", "0.0001"},
		{"truncates beyond four places", "1.23456", "1.2346"},
		{"negative", "-3.5", "-3.5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decimal.NewFromString(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(v))
		})
	}
}

func TestParseInput(t *testing.T) {
	assert.True(t, ParseInput("100.25").Equal(decimal.RequireFromString("100.25")))
	assert.True(t, ParseInput("").IsZero())
	assert.True(t, ParseInput("abc").IsZero())
	assert.True(t, ParseInput(MarketPriceMarker).IsZero())
}
