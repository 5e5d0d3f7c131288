// Package urlhost extracts network hosts and registrable domains from URLs
// and free-text hints. All functions are pure and tolerate malformed input by
// returning an empty string.
package urlhost

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HostOf parses a URL and returns its lower-cased host with any port
// stripped. Returns "" for empty input or anything net/url rejects.
func HostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// HostFromHint treats arbitrary text as a possible URL or bare hostname.
// Text with a scheme or a protocol-relative "//" prefix is parsed as a URL;
// anything else is returned trimmed and lower-cased as-is.
func HostFromHint(hint string) string {
	s := strings.ToLower(strings.TrimSpace(hint))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "//") {
		raw := s
		if !strings.Contains(raw, "://") {
			raw = "http:" + raw
		}
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			return strings.ToLower(u.Hostname())
		}
		return ""
	}
	return s
}

// RegistrableDomain computes the eTLD+1 for a host using the public suffix
// list. When the lookup cannot produce one (bare suffix, single label, IP),
// it falls back to the last two dot-separated labels, which is known to
// mis-handle multi-label public suffixes the list does not cover.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}
