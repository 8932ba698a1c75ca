package offline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Entry is a stored response.
type Entry struct {
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Hop-by-hop headers are never stored or forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// NewEntry captures resp under key. The body must already be read.
func NewEntry(key string, resp *http.Response, body []byte) *Entry {
	h := resp.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	removeHopHeaders(h)
	h.Del(CacheHeader)
	return &Entry{
		URL:      key,
		Status:   resp.StatusCode,
		Header:   h,
		Body:     body,
		StoredAt: time.Now(),
	}
}

// Response rebuilds an *http.Response for req from the entry.
func (e *Entry) Response(req *http.Request) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// entryWire has Entry's fields but none of its methods, so gob encodes it
// field by field instead of calling back into MarshalBinary.
type entryWire Entry

// MarshalBinary gob-encodes the entry.
func (e *Entry) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode((*entryWire)(e)); err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an entry written by MarshalBinary.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode((*entryWire)(e)); err != nil {
		return fmt.Errorf("failed to decode entry: %w", err)
	}
	return nil
}

// RequestKey returns the cache key for req: its absolute URL without the
// fragment.
func RequestKey(req *http.Request) string {
	return urlKey(req.URL)
}

func urlKey(u *url.URL) string {
	k := *u
	k.Fragment = ""
	k.RawFragment = ""
	return k.String()
}

func removeHopHeaders(h http.Header) {
	for _, name := range hopHeaders {
		h.Del(name)
	}
}
