package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastToken(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		link      string
		remaining string
	}{
		{"trailing link", "look at this https://t.co/abc", "https://t.co/abc", "look at this"},
		{"trailing whitespace", "clip https://t.co/abc \n", "https://t.co/abc", "clip"},
		{"newline separated", "first line\nhttps://t.co/x", "https://t.co/x", "first line"},
		{"link only", "https://t.co/only", "https://t.co/only", ""},
		{"no link at all", "nolinkhere", "nolinkhere", ""},
		{"empty", "", "", ""},
		{"wide space", "clip　https://t.co/w", "https://t.co/w", "clip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, remaining := LastToken(tt.text)
			assert.Equal(t, tt.link, link)
			assert.Equal(t, tt.remaining, remaining)
		})
	}
}
