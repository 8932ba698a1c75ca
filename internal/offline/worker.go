package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CacheHeader is set on every response returned by Fetch: "hit" when it
// came from the cache, "network" otherwise.
const CacheHeader = "X-Offline-Cache"

const tracerName = "github.com/anthozoa/anthozoa/internal/offline"

// Options configures a Worker.
type Options struct {
	// Prefix names the app; generations are "<Prefix>-cache-v<Version>".
	Prefix  string
	Version int

	// Origin resolves relative asset URLs and proxied requests.
	Origin string
	// Assets is the fixed list prefetched on install. Entries may be
	// relative to Origin or absolute (cross-origin).
	Assets []string

	// Client performs network fetches. Defaults to http.DefaultClient.
	Client *http.Client
	// Concurrency bounds parallel install fetches. Defaults to 4.
	Concurrency int
	// RequestsPerSecond throttles install fetches. Zero means unlimited.
	RequestsPerSecond float64

	Logger *log.Logger
	Tracer trace.Tracer
}

// InstallReport lists the outcome of each asset attempted during install.
type InstallReport struct {
	Cache  string
	Cached []string
	Failed []*FetchError
}

// Worker serves requests from a versioned cache generation.
type Worker struct {
	storage Storage
	opts    Options
	origin  *url.URL
	assets  []string
	name    string

	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
	tracer  trace.Tracer

	mu      sync.Mutex
	sm      *stateMachine
	current Cache

	controlling atomic.Bool
}

// NewWorker validates opts and returns a worker in StateParsed.
func NewWorker(storage Storage, opts Options) (*Worker, error) {
	if storage == nil {
		return nil, errors.New("offline: storage is required")
	}
	if opts.Prefix == "" {
		return nil, errors.New("offline: prefix is required")
	}
	if opts.Version < 1 {
		return nil, fmt.Errorf("offline: version must be at least 1, got %d", opts.Version)
	}

	origin, err := url.Parse(opts.Origin)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("offline: origin %q must be an absolute URL", opts.Origin)
	}

	assets := make([]string, 0, len(opts.Assets))
	for _, a := range opts.Assets {
		u, err := origin.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("offline: invalid asset %q: %w", a, err)
		}
		assets = append(assets, urlKey(u))
	}

	w := &Worker{
		storage: storage,
		opts:    opts,
		origin:  origin,
		assets:  assets,
		name:    CacheName(opts.Prefix, opts.Version),
		client:  opts.Client,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
		sm:      newStateMachine(),
	}
	if w.client == nil {
		w.client = http.DefaultClient
	}
	if w.logger == nil {
		w.logger = log.Default().WithPrefix("offline")
	}
	if w.tracer == nil {
		w.tracer = otel.Tracer(tracerName)
	}
	if w.opts.Concurrency <= 0 {
		w.opts.Concurrency = 4
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	w.limiter = rate.NewLimiter(limit, 1)

	w.sm.onEnter[StateActivated] = func() { w.controlling.Store(true) }
	w.sm.onEnter[StateRedundant] = func() { w.controlling.Store(false) }
	return w, nil
}

// CacheName returns the current generation's store name.
func (w *Worker) CacheName() string { return w.name }

// Origin returns the origin requests are resolved against.
func (w *Worker) Origin() *url.URL { return w.origin }

// Assets returns the resolved asset URLs.
func (w *Worker) Assets() []string { return append([]string(nil), w.assets...) }

// State returns the lifecycle stage.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sm.current
}

// Controlling reports whether the worker answers requests from its cache.
func (w *Worker) Controlling() bool { return w.controlling.Load() }

// Install opens the current generation and prefetches every asset. A single
// asset failing is recorded in the report and logged, never returned; Install
// only fails when the cache cannot be opened or ctx is cancelled.
func (w *Worker) Install(ctx context.Context) (*InstallReport, error) {
	if err := w.transition(StateInstalling); err != nil {
		return nil, err
	}

	ctx, span := w.tracer.Start(ctx, "offline.install", trace.WithAttributes(
		attribute.String("offline.cache", w.name),
		attribute.Int("offline.assets", len(w.assets)),
	))
	defer span.End()

	c, err := w.storage.Open(ctx, w.name)
	if err != nil {
		w.fail(span, err)
		return nil, fmt.Errorf("failed to open cache %s: %w", w.name, err)
	}

	report := &InstallReport{Cache: w.name}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for _, asset := range w.assets {
		g.Go(func() error {
			if err := w.limiter.Wait(gctx); err != nil {
				return err
			}
			ferr := w.installAsset(gctx, c, asset)

			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				w.logger.Warn("failed to cache asset", "url", asset, "err", ferr)
				report.Failed = append(report.Failed, ferr)
				return nil
			}
			report.Cached = append(report.Cached, asset)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.fail(span, err)
		return report, fmt.Errorf("install interrupted: %w", err)
	}

	slices.Sort(report.Cached)

	w.mu.Lock()
	w.current = c
	w.mu.Unlock()

	if err := w.transition(StateInstalled); err != nil {
		return report, err
	}
	span.SetAttributes(
		attribute.Int("offline.cached", len(report.Cached)),
		attribute.Int("offline.failed", len(report.Failed)),
	)
	w.logger.Info("installed", "cache", w.name, "cached", len(report.Cached), "failed", len(report.Failed))
	return report, nil
}

func (w *Worker) installAsset(ctx context.Context, c Cache, asset string) *FetchError {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
	if err != nil {
		return &FetchError{URL: asset, Op: OpInstall, Err: err}
	}
	// Skip intermediate HTTP caches so the stored copy is the origin's.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := w.client.Do(req)
	if err != nil {
		return &FetchError{URL: asset, Op: OpInstall, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{URL: asset, Op: OpInstall, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: asset, Op: OpInstall, Err: err}
	}
	if err := c.Put(ctx, NewEntry(asset, resp, body)); err != nil {
		return &FetchError{URL: asset, Op: OpInstall, Err: err}
	}
	return nil
}

// Activate deletes every other generation sharing the prefix, then claims
// control of requests. It returns the deleted store names.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	if err := w.transition(StateActivating); err != nil {
		return nil, err
	}

	ctx, span := w.tracer.Start(ctx, "offline.activate", trace.WithAttributes(
		attribute.String("offline.cache", w.name),
	))
	defer span.End()

	names, err := w.storage.Names(ctx)
	if err != nil {
		w.fail(span, err)
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}

	var deleted []string
	for _, name := range names {
		if !IsStaleGeneration(name, w.opts.Prefix, w.name) {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			w.fail(span, err)
			return deleted, fmt.Errorf("failed to delete cache %s: %w", name, err)
		}
		w.logger.Info("deleted old cache", "cache", name)
		deleted = append(deleted, name)
	}

	if err := w.transition(StateActivated); err != nil {
		return deleted, err
	}
	span.SetAttributes(attribute.StringSlice("offline.deleted", deleted))
	w.logger.Info("activated", "cache", w.name)
	return deleted, nil
}

// Fetch resolves req according to Classify. req must be a client request
// with an absolute URL. Before activation requests go straight to the
// network. The returned error is a *FetchError when neither the network nor
// the cache could answer.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if !w.Controlling() {
		return w.network(req)
	}

	policy := Classify(req)
	ctx, span := w.tracer.Start(ctx, "offline.fetch", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.URL.String()),
		attribute.String("offline.policy", policy.String()),
	))
	defer span.End()
	req = req.WithContext(ctx)

	var (
		resp *http.Response
		err  error
	)
	if policy == NetworkFirst {
		resp, err = w.networkFirst(ctx, req)
	} else {
		resp, err = w.cacheFirst(ctx, req)
	}
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("offline.source", resp.Header.Get(CacheHeader)),
	)
	return resp, nil
}

func (w *Worker) networkFirst(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, netErr := w.network(req)
	if netErr == nil {
		if req.Method == http.MethodGet && resp.StatusCode == http.StatusOK {
			return w.store(ctx, req, resp)
		}
		return resp, nil
	}

	w.logger.Debug("network failed, trying cache", "url", req.URL, "err", netErr)
	e, err := w.storage.Match(ctx, RequestKey(req))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &FetchError{URL: req.URL.String(), Op: OpFetch, Err: netErr}
		}
		return nil, &FetchError{URL: req.URL.String(), Op: OpFetch, Err: errors.Join(netErr, err)}
	}
	return hit(e, req), nil
}

func (w *Worker) cacheFirst(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet {
		e, err := w.storage.Match(ctx, RequestKey(req))
		if err == nil {
			return hit(e, req), nil
		}
		if !errors.Is(err, ErrNotFound) {
			w.logger.Warn("cache lookup failed", "url", req.URL, "err", err)
		}
	}

	resp, err := w.network(req)
	if err != nil {
		return nil, &FetchError{URL: req.URL.String(), Op: OpFetch, Err: err}
	}
	return resp, nil
}

// store buffers resp, writes a copy to the current generation and returns
// an equivalent response. Storage failures are logged only.
func (w *Worker) store(ctx context.Context, req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &FetchError{URL: req.URL.String(), Op: OpFetch, Err: err}
	}

	e := NewEntry(RequestKey(req), resp, body)
	if c := w.currentCache(); c != nil {
		if err := c.Put(ctx, e); err != nil {
			w.logger.Warn("failed to store response", "url", e.URL, "err", err)
		}
	}

	out := e.Response(req)
	out.Header = resp.Header.Clone()
	out.Header.Set(CacheHeader, "network")
	return out, nil
}

func (w *Worker) network(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("fetched", "url", req.URL, "status", resp.StatusCode, "took", time.Since(start))
	resp.Header.Set(CacheHeader, "network")
	return resp, nil
}

func (w *Worker) currentCache() Cache {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Worker) transition(to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sm.transition(to)
}

// fail records err on span and marks the worker redundant.
func (w *Worker) fail(span trace.Span, err error) {
	recordError(span, err)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sm.canTransition(StateRedundant) {
		_ = w.sm.transition(StateRedundant)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func hit(e *Entry, req *http.Request) *http.Response {
	resp := e.Response(req)
	resp.Header.Set(CacheHeader, "hit")
	return resp
}
