package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	u := Default()

	require.Equal(t, 48, u.Len())
	symbols := u.Symbols()
	assert.Equal(t, "NVDA", symbols[0])
	assert.Equal(t, "AAPL", symbols[1])
	assert.Equal(t, "CMCSA", symbols[47])
	assert.Equal(t, 8, u.Position("JPM"))
	assert.True(t, u.Contains("msft"))
	assert.False(t, u.Contains("XYZ"))
	assert.Equal(t, -1, u.Position("XYZ"))
}

func TestDefaultSymbols_ReturnsCopy(t *testing.T) {
	s := DefaultSymbols()
	s[0] = "ZZZ"
	assert.Equal(t, "NVDA", DefaultSymbols()[0])
}

func TestNew_NormalizesAndKeepsOrder(t *testing.T) {
	u, err := New([]string{" aapl", "brk.b", "MSFT "})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BRK.B", "MSFT"}, u.Symbols())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		wantErr error
	}{
		{"valid", []string{"AAPL", "BF-B", "T"}, nil},
		{"empty", nil, ErrEmpty},
		{"blank", []string{"AAPL", ""}, ErrInvalidSymbol},
		{"lowercase", []string{"aapl"}, ErrInvalidSymbol},
		{"spaces", []string{"AA PL"}, ErrInvalidSymbol},
		{"duplicate", []string{"AAPL", "MSFT", "AAPL"}, ErrDuplicateSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.symbols)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New([]string{"aapl", "AAPL"})
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
}
