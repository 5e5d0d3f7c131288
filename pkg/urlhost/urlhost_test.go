package urlhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostOf(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain url", "https://example.com/path", "example.com"},
		{"port stripped", "https://Example.COM:8443/x", "example.com"},
		{"subdomain", "http://ads.news.mn/banner?id=1", "ads.news.mn"},
		{"empty", "", ""},
		{"scheme only", "https://", ""},
		{"no scheme means no host", "example.com/path", ""},
		{"malformed", "http://[::1:bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostOf(tt.url))
		})
	}
}

func TestHostFromHint(t *testing.T) {
	tests := []struct {
		name string
		hint string
		want string
	}{
		{"full url", "https://Shop.Example.com/landing", "shop.example.com"},
		{"protocol relative", "//cdn.brand.mn/creative.png", "cdn.brand.mn"},
		{"bare host", "  Brand.MN  ", "brand.mn"},
		{"free text passes through", "some advertiser", "some advertiser"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostFromHint(tt.hint))
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare etld1", "example.com", "example.com"},
		{"subdomain collapsed", "ads.shop.example.com", "example.com"},
		{"multi-label public suffix", "shop.amazon.co.uk", "amazon.co.uk"},
		{"mn tld", "edge.boost.mn", "boost.mn"},
		{"single label falls back to itself", "localhost", "localhost"},
		{"bare suffix falls back to last two labels", "co.uk", "co.uk"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrableDomain(tt.host))
		})
	}
}
