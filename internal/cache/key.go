// Package cache keeps remotely fetched media on local storage and decides, per source,
// whether the local copy is fresh enough to play instead of the original URL.
//
// Two stores cooperate: a blob store holding the media bytes and a ledger recording
// when each blob was fetched. The blob store alone cannot answer freshness questions.
package cache

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Key normalizes a source URL into the identity used by both stores.
// Scheme and host are lowercased, hosts are converted to their ASCII form, default
// ports and fragments are dropped and dot-segments are resolved. Relative URLs are rejected.
func Key(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}

	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("source url %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host, port := strings.ToLower(u.Hostname()), u.Port()
	if net.ParseIP(host) == nil {
		if host, err = idna.Lookup.ToASCII(host); err != nil {
			return "", fmt.Errorf("normalize host %q: %w", u.Hostname(), err)
		}
	}

	if port == defaultPorts[u.Scheme] {
		port = ""
	}

	switch {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	if u.Path == "" {
		u.Path = "/"
	} else {
		trailing := strings.HasSuffix(u.Path, "/")
		u.Path = path.Clean(u.Path)
		if trailing && u.Path != "/" {
			u.Path += "/"
		}
	}

	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}
