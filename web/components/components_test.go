package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkData_URL(t *testing.T) {
	tests := []struct {
		in   LinkData
		want string
	}{
		{LinkData{Domain: "getqr.link"}, "https://getqr.link"},
		{LinkData{Domain: "https://getqr.link/", ShortCode: "abc123"}, "https://getqr.link/abc123"},
		{LinkData{Domain: "getqr.link", ShortCode: "/x"}, "https://getqr.link/x"},
		{LinkData{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.URL())
	}
}
