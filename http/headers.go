package http

import (
	"net/http"
	"strings"

	"github.com/corpix/uarand"
)

// HeaderFunc returns the headers sent with one request.
type HeaderFunc func() http.Header

const (
	acceptChromium = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	acceptDefault  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// RandomHeaders returns browser-like headers around a random user agent.
// Accept follows the browser family of the chosen agent.
func RandomHeaders() http.Header {
	ua := uarand.GetRandom()

	h := make(http.Header)
	h.Set("User-Agent", ua)
	h.Set("Accept", acceptFor(ua))
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

func acceptFor(ua string) string {
	if strings.Contains(ua, "Chrome/") && !strings.Contains(ua, "Firefox/") {
		return acceptChromium
	}
	return acceptDefault
}
