package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digits", "4155550100", "14155550100"},
		{"eleven digits with one", "14155550100", "14155550100"},
		{"plus one", "+14155550100", "14155550100"},
		{"formatted", "+1 (415) 555-0100", "14155550100"},
		{"dashes", "415-555-0100", "14155550100"},
		{"dots and spaces", "415. 555 .0100", "14155550100"},
		{"international passthrough", "+44 20 7946 0958", "442079460958"},
		{"short passthrough", "555-0100", "5550100"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	// Every formatting of the same NANP number must land on one canonical form.
	variants := []string{
		"4155550100",
		"14155550100",
		"+14155550100",
		"+1 (415) 555-0100",
		"(415) 555-0100",
		"1-415-555-0100",
	}
	for _, v := range variants {
		assert.Equal(t, "14155550100", Normalize(v), "variant %q", v)
	}
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "+1 (415) 555-0100", FormatForDisplay("4155550100"))
	assert.Equal(t, "+1 (415) 555-0100", FormatForDisplay("+14155550100"))
	// Non-NANP input is returned untouched.
	assert.Equal(t, "+44 20 7946 0958", FormatForDisplay("+44 20 7946 0958"))
	assert.Equal(t, "", FormatForDisplay(""))
}
