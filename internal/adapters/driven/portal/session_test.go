package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCleanCUIT tests normalisation of the CUIT shown on the portal
// account header.
func TestCleanCUIT(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bracketed with dashes", "[20-11111111-2]", "20111111112"},
		{"plain digits", "20111111112", "20111111112"},
		{"dashes only", "30-33333333-4", "30333333334"},
		{"surrounding whitespace", "  [27-22222222-8]  ", "27222222228"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanCUIT(tt.input))
		})
	}
}

// TestHeaderCUIT tests extraction of the CUIT from the invoicing
// service's user header cell.
func TestHeaderCUIT(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"cuit and name", "20111111112 - PEREZ JUAN", "20111111112"},
		{"name with separator", "30333333334 - AGUARA - LABS SRL", "30333333334"},
		{"cuit only", "20111111112", "20111111112"},
		{"padded", "  20111111112 - PEREZ JUAN", "20111111112"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, headerCUIT(tt.input))
		})
	}
}
