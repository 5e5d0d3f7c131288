// Package advertiser resolves the best-available advertiser attribution for
// a banner observation. Attribution must never point back at the hosting
// property or at shared ad-serving infrastructure.
package advertiser

import (
	"adledger/pkg/urlhost"
)

// defaultDenylist holds registrable domains of ad exchanges and serving
// infrastructure that are noise rather than advertisers.
var defaultDenylist = []string{
	"boost.mn",
	"edge.boost.mn",
	"exchange.boost.mn",
	"doubleclick.net",
	"googlesyndication.com",
	"adservice.google.com",
}

// Chooser picks advertiser attribution from observation context.
type Chooser struct {
	denylist map[string]bool
}

// NewChooser creates a Chooser with the built-in infrastructure denylist
// plus any extra entries from configuration.
func NewChooser(extra []string) *Chooser {
	deny := make(map[string]bool, len(defaultDenylist)+len(extra))
	for _, h := range defaultDenylist {
		deny[h] = true
	}
	for _, h := range extra {
		if h != "" {
			deny[h] = true
		}
	}
	return &Chooser{denylist: deny}
}

// Choose returns the advertiser host and registrable domain, trying the
// free-text hint first and the click-through URL second. A candidate is
// accepted only if its registrable domain is non-empty, not denylisted, and
// different from the hosting page's own registrable domain. Returns empty
// strings when no candidate is acceptable; that is a valid outcome, not an
// error.
func (c *Chooser) Choose(hint, clickURL, pageURL string) (host, domain string) {
	pageDomain := ""
	if pageURL != "" {
		pageDomain = urlhost.RegistrableDomain(urlhost.HostOf(pageURL))
	}

	if hintHost := urlhost.HostFromHint(hint); hintHost != "" {
		if etld1 := urlhost.RegistrableDomain(hintHost); c.acceptable(hintHost, etld1, pageDomain) {
			return hintHost, etld1
		}
	}

	if clickHost := urlhost.HostOf(clickURL); clickHost != "" {
		if etld1 := urlhost.RegistrableDomain(clickHost); c.acceptable(clickHost, etld1, pageDomain) {
			return clickHost, etld1
		}
	}

	return "", ""
}

// acceptable rejects denylist hits at either the exact host or its
// registrable domain, so a bare "doubleclick.net" entry also covers
// subdomains while "adservice.google.com" stays a single-host block.
func (c *Chooser) acceptable(host, domain, pageDomain string) bool {
	return domain != "" && !c.denylist[host] && !c.denylist[domain] && domain != pageDomain
}
