package textutil

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL cleans a free-form website value, adds an https scheme when
// none is present, and returns the URL with its host minus any "www." prefix.
// Placeholder values and unparseable URLs yield empty strings.
func NormalizeURL(raw string) (string, string) {
	u := CleanText(raw)
	if u == "" || strings.EqualFold(u, "null") || u == "N/A" {
		return "", ""
	}
	if !schemeRe.MatchString(u) {
		u = "https://" + u
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return "", ""
	}
	return u, strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// ValidURL reports whether s parses as an absolute http(s) URL with a host.
func ValidURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Hostname() != ""
}

// FirstLabel returns the leading DNS label of a domain ("stmarks" for "stmarks.org").
func FirstLabel(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return label
}
