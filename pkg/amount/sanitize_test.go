package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"digits", "123", "123"},
		{"decimal", "1.5", "1.5"},
		{"second dot merged", "12.34.56", "12.3456"},
		{"letters dropped", "abc1.2def", "1.2"},
		{"capped at eight", "1.123456789", "1.12345678"},
		{"lone dot", ".", "0."},
		{"leading dot", ".5", "0.5"},
		{"trailing dot kept", "12.", "12."},
		{"double trailing dot", "1..", "1."},
		{"dots only", "...", "0."},
		{"dot after fraction", "1.2.", "1.2"},
		{"spaces and commas", " 1,000.5 ", "1000.5"},
		{"minus dropped", "-4.2", "4.2"},
		{"unicode dropped", "٣1.€5", "1.5"},
		{"leading zeros kept", "007", "007"},
		{"merged then capped", "0.1234.56789", "0.12345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.raw))
		})
	}
}

func TestSanitizeInput_Idempotent(t *testing.T) {
	inputs := []string{"", ".", "..", "1.", "abc", "12.34.56", "1.123456789", "x.y.z", "9..9..9"}
	for _, in := range inputs {
		once := SanitizeInput(in)
		assert.Equal(t, once, SanitizeInput(once), "input %q", in)
	}
}

func TestSanitizeInput_ParsesConsistently(t *testing.T) {
	// Whatever the sanitizer keeps must parse to the same value the raw digits
	// would give once the merge policy is applied.
	assert.Equal(t, "1234560000", ParseUnits(SanitizeInput("12.34.56"), 8).String())
	assert.Equal(t, "0", ParseUnits(SanitizeInput("."), 8).String())
	assert.Equal(t, "112345678", ParseUnits(SanitizeInput("1.123456789"), 8).String())
}
