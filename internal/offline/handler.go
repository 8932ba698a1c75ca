package offline

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
)

// Handler is a forward proxy that answers requests through a Worker.
// Origin-form requests ("/style.css") are resolved against the worker's
// origin; absolute-form requests are forwarded to their own host.
type Handler struct {
	worker *Worker
	logger *log.Logger
}

// NewHandler returns a proxy for w.
func NewHandler(w *Worker, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default().WithPrefix("proxy")
	}
	return &Handler{worker: w, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	target := r.URL
	if !target.IsAbs() {
		target = h.worker.Origin().ResolveReference(&url.URL{
			Path:     r.URL.Path,
			RawPath:  r.URL.RawPath,
			RawQuery: r.URL.RawQuery,
		})
	}

	var body io.Reader
	if r.ContentLength != 0 {
		body = r.Body
	}
	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	out.Header = r.Header.Clone()
	removeHopHeaders(out.Header)
	out.ContentLength = r.ContentLength

	resp, err := h.worker.Fetch(r.Context(), out)
	if err != nil {
		var ferr *FetchError
		if errors.As(err, &ferr) {
			h.logger.Warn("request failed", "url", ferr.URL, "err", ferr.Err)
		} else {
			h.logger.Warn("request failed", "url", target, "err", err)
		}
		http.Error(rw, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	header := rw.Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			header.Add(k, v)
		}
	}
	removeHopHeaders(header)
	rw.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(rw, resp.Body); err != nil {
		h.logger.Debug("failed to write response", "url", target, "err", err)
	}
}
