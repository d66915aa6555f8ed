package gemini

import (
	"net"
	"net/url"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// NormalizePath normalizes an empty path to "/", leaving all other paths
// untouched. The router and the dispatcher both consult it before
// lookup; the matcher itself never percent-decodes a path, since that is
// the URL parser's job upstream.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// QueryValue extracts the percent-decoded input value from a request
// URL, following the Input/SensitiveInput contract: a request with no
// query component has not yet answered the prompt. Supplements the
// spec's Utilities line item with the decoding behavior described by the
// original implementation's returnable.rs query helpers.
func QueryValue(u *url.URL) (string, bool) {
	if u.RawQuery == "" && !u.ForceQuery {
		return "", false
	}
	value, err := url.QueryUnescape(u.RawQuery)
	if err != nil {
		return u.RawQuery, true
	}
	return value, true
}

// NormalizeHost punycodes a non-ASCII hostname (e.g. one carried by a
// request URL's Host or by a TLS ClientHelloInfo.ServerName) so that
// logging, module state keyed by hostname, and certificate lookups all
// agree on one representation. ASCII hostnames and IP literals pass
// through unchanged.
func NormalizeHost(hostname string) string {
	if hostname == "" || net.ParseIP(hostname) != nil || isASCII(hostname) {
		return hostname
	}
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		return hostname
	}
	return ascii
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
