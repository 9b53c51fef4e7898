package util

import (
	"net/url"
	"strings"
)

// Hostname returns the lower-cased host of rawURL, or "" if it does not parse.
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// HostInFamily reports whether the host of rawURL equals one of domains or is
// a subdomain of one.
func HostInFamily(rawURL string, domains []string) bool {
	host := Hostname(rawURL)
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsWebURL reports whether rawURL is an absolute http(s) URL with a host.
func IsWebURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
