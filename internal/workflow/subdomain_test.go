package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubdomain(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"lowercase passthrough", "alpha", "alpha"},
		{"mixed case with punctuation", "Worker-1!!", "worker-1"},
		{"surrounding whitespace", "  promo  ", "promo"},
		{"cyrillic stripped", "сайтshop", "shop"},
		{"dots and slashes stripped", "my.site/page", "mysitepage"},
		{"digits kept", "x2y3", "x2y3"},
		{"empty after stripping", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSubdomain(tt.candidate))
		})
	}
}
