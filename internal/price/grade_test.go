package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalGrade(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"regular", "87"},
		{"Regular", "87"},
		{"87", "87"},
		{"unleaded", "87"},
		{"  Unleaded  ", "87"},
		{"midgrade", "89"},
		{"89", "89"},
		{"premium", "93"},
		{"93", "93"},
		{"supreme", "93"},
		{"diesel", "diesel"},
		{"D", "diesel"},
		{"E85", "e85"},
		{"Race Fuel", "race fuel"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalGrade(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalGrade_Idempotent(t *testing.T) {
	inputs := []string{"regular", "87", "midgrade", "premium", "diesel", "e85", "weird label", ""}
	for _, in := range inputs {
		once := CanonicalGrade(in)
		assert.Equal(t, once, CanonicalGrade(once), "canonicalizing %q twice", in)
	}
}
