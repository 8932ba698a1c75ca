// Package offline implements a versioned asset cache that sits between a
// client and an origin server.
//
// A Worker moves through install, activate and fetch. Install prefetches a
// fixed asset list into the current cache generation, activate deletes
// older generations sharing the same prefix and starts controlling
// requests, and fetch answers each request either network-first (page
// navigations, HTML and CSS) or cache-first (everything else).
package offline
