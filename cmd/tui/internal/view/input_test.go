package view_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/prestamos/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Dot", input: "36.5", want: "36.5"},
		{name: "Comma", input: "36,5", want: "36.5"},
		{name: "Spaces", input: "  100 ", want: "100"},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Negative", input: "-5", wantErr: true},
		{name: "Text", input: "diez", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

func TestParseOptionalAmount(t *testing.T) {
	got, err := view.ParseOptionalAmount(" ")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = view.ParseOptionalAmount("36,5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "36.5", got.String())

	_, err = view.ParseOptionalAmount("n/a")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$12.50", view.FormatMoney(decimal.RequireFromString("12.5"), loan.CurrencyUSD))
	assert.Equal(t, "Bs 730.00", view.FormatMoney(decimal.NewFromInt(730), loan.CurrencyVES))
}
