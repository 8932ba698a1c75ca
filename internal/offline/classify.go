package offline

import (
	"net/http"
	"strings"
)

// Policy selects how a request is resolved.
type Policy int

const (
	// CacheFirst answers from the cache and only goes to the network on a
	// miss. Network results are not stored.
	CacheFirst Policy = iota
	// NetworkFirst goes to the network, stores 200 responses, and falls
	// back to the cache when the network fails.
	NetworkFirst
)

// String returns the policy name.
func (p Policy) String() string {
	if p == NetworkFirst {
		return "network-first"
	}
	return "cache-first"
}

// FetchModeHeader carries the request mode; browsers send "navigate" for
// top-level page loads.
const FetchModeHeader = "Sec-Fetch-Mode"

// Classify picks the policy for req. Navigations and GET requests that
// accept HTML or CSS are network-first; everything else is cache-first.
func Classify(req *http.Request) Policy {
	if req.Header.Get(FetchModeHeader) == "navigate" {
		return NetworkFirst
	}
	if req.Method != http.MethodGet {
		return CacheFirst
	}
	accept := req.Header.Get("Accept")
	if strings.Contains(accept, "text/html") || strings.Contains(accept, "text/css") {
		return NetworkFirst
	}
	return CacheFirst
}
