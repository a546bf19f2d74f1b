package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLamportsToSOL(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0.000000000"},
		{1, "0.000000001"},
		{5000, "0.000005000"},
		{1_000_000_000, "1.000000000"},
		{24981836, "0.024981836"},
		{12_345_678_901, "12.345678901"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LamportsToSOL(tt.lamports))
	}
}
