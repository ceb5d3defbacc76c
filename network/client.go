// Package network provides the HTTP client used to populate the media cache and fetch remote caption files.
package network

import (
	"net/http"
	"time"

	"github.com/cachedplayer/cachedplayer/constant"
)

// Client is shared by every cache fetch in the process.
// There is no overall timeout: media downloads are long-lived and are bounded by their context instead.
var Client = &http.Client{
	Transport: &userAgentTransport{base: newTransport()},
}

// newTransport initializes a tuned http.Transport for a handful of large concurrent downloads.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 16
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

// userAgentTransport sets a default User-Agent unless the caller supplied one through source headers.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return t.base.RoundTrip(req)
}
