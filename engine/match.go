package engine

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Matcher reports whether a result URL belongs to the target domain.
type Matcher func(rawURL string) bool

// NewMatcher builds the Matcher for mode ("substring" or "host").
//
// "substring" is a plain substring test over the whole URL, so
// "example.com" also matches "https://other.net/?ref=example.com".
// "host" compares the parsed hostname: it must equal domain or be one of
// its subdomains. A bare public suffix ("com.cn") is rejected in host mode
// because it would match every site registered under it.
func NewMatcher(mode, domain string) (Matcher, error) {
	if domain == "" {
		return nil, fmt.Errorf("match: empty domain")
	}
	switch mode {
	case "", "substring":
		return func(rawURL string) bool {
			return strings.Contains(rawURL, domain)
		}, nil
	case "host":
		d := strings.ToLower(strings.TrimSuffix(domain, "."))
		if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
			return nil, fmt.Errorf("match: %q is a public suffix", domain)
		}
		return func(rawURL string) bool {
			u, err := url.Parse(rawURL)
			if err != nil {
				return false
			}
			host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
			return host == d || strings.HasSuffix(host, "."+d)
		}, nil
	default:
		return nil, fmt.Errorf("match: unknown mode %q", mode)
	}
}
