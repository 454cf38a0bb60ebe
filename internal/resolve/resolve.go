// Package resolve ties the cache, the loaders and the seed data together.
//
// Activating a domain walks the fallback chain fresh cache, remote load,
// stale cache, seed data and finally an empty unconfigured result. Failures
// never leave this package as errors; the tier that produced the items is
// reported on the Result instead.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/cache"
	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/metrics"
	"github.com/matheuskafuri/folio/internal/transform"
)

// Tier names the source of a Result's items.
type Tier string

const (
	TierLoading      Tier = "loading"
	TierFresh        Tier = "fresh"
	TierRemote       Tier = "remote"
	TierStale        Tier = "stale"
	TierSeed         Tier = "seed"
	TierUnconfigured Tier = "unconfigured"
)

// Domain is one independently resolved data set, such as projects.
type Domain struct {
	Name     string
	CacheKey string
	TTL      time.Duration
	Loader   Loader
	// Seed is shown when neither a remote load nor the cache has items.
	Seed []item.DisplayItem
}

// Result is the state handed to a renderer.
type Result struct {
	Items        []item.DisplayItem `json:"items"`
	Categories   []string           `json:"categories"`
	IsLoading    bool               `json:"is_loading"`
	IsStale      bool               `json:"is_stale"`
	Unconfigured bool               `json:"unconfigured"`
	Tier         Tier               `json:"tier"`
	// Err is the last load failure, kept for diagnostics.
	Err error `json:"-"`
}

func newResult(items []item.DisplayItem, tier Tier) Result {
	if items == nil {
		items = []item.DisplayItem{}
	}
	return Result{
		Items:      items,
		Categories: transform.Categories(items),
		IsStale:    tier == TierStale || tier == TierSeed,
		Tier:       tier,
	}
}

type Resolver struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func New(c *cache.Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cache: c, logger: logger}
}

type activation struct {
	skipRefresh bool
	force       bool
}

type ActivateOption func(*activation)

// SkipRefresh serves a fresh cache hit without the background refresh.
func SkipRefresh() ActivateOption {
	return func(a *activation) { a.skipRefresh = true }
}

// ForceRefresh loads remotely even when the cache is fresh. The cache still
// serves as fallback.
func ForceRefresh() ActivateOption {
	return func(a *activation) { a.force = true }
}

// Activate starts resolving d and returns immediately. onUpdate, which may be
// nil, receives every published Result from a background goroutine and must
// not call Close.
func (r *Resolver) Activate(ctx context.Context, d Domain, onUpdate func(Result), opts ...ActivateOption) *Session {
	var a activation
	for _, opt := range opts {
		opt(&a)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := newSession(cancel, onUpdate)
	go r.run(ctx, s, d, a)
	return s
}

// Resolve activates d and waits for all of its work, including any
// background refresh, to finish.
func (r *Resolver) Resolve(ctx context.Context, d Domain, opts ...ActivateOption) Result {
	s := r.Activate(ctx, d, nil, opts...)
	defer s.Close()
	s.Wait()
	return s.Result()
}

func (r *Resolver) run(ctx context.Context, s *Session, d Domain, a activation) {
	defer close(s.done)
	defer s.markReady()

	log := r.logger.With(zap.String("domain", d.Name))

	var cached []item.DisplayItem
	status := r.cache.Lookup(d.CacheKey, &cached)
	log.Debug("Cache lookup", zap.Stringer("status", status), zap.Int("items", len(cached)))
	if status != cache.Miss && len(cached) == 0 {
		status = cache.Miss
	}

	if status == cache.Fresh && !a.force {
		r.publish(s, d, newResult(cached, TierFresh), nil)
		if !a.skipRefresh {
			r.refresh(ctx, s, d, cached)
		}
		return
	}

	loading := newResult(nil, TierLoading)
	if status != cache.Miss {
		loading = newResult(cached, TierLoading)
		loading.IsStale = status == cache.Stale
	}
	loading.IsLoading = true
	s.apply(loading, nil)

	items, err := r.load(ctx, d, cached)
	if ctx.Err() != nil {
		if s.isClosed() {
			log.Debug("Session closed during load")
			return
		}
		// The caller's context ended: settle on what is already stored.
		if err == nil {
			err = ctx.Err()
		}
	}
	if err == nil {
		r.publish(s, d, newResult(items, TierRemote), func() {
			r.cache.Set(d.CacheKey, items, d.TTL)
		})
		return
	}

	log.Warn("Load failed, falling back", zap.Error(err), zap.String("kind", string(fault.KindOf(err))))
	res := r.fallback(d, cached, status)
	res.Err = err
	r.publish(s, d, res, nil)
}

// fallback picks the best available tier after a failed load.
func (r *Resolver) fallback(d Domain, cached []item.DisplayItem, status cache.Status) Result {
	switch {
	case status == cache.Fresh:
		return newResult(cached, TierFresh)
	case status == cache.Stale:
		return newResult(cached, TierStale)
	case len(d.Seed) > 0:
		return newResult(d.Seed, TierSeed)
	}
	res := newResult(nil, TierUnconfigured)
	res.Unconfigured = true
	return res
}

// refresh reloads d behind an already displayed fresh result. Only a
// successful load replaces what is shown.
func (r *Resolver) refresh(ctx context.Context, s *Session, d Domain, current []item.DisplayItem) {
	items, err := r.load(ctx, d, current)
	if ctx.Err() != nil {
		metrics.RecordRefresh(d.Name, "cancelled")
		return
	}
	if err != nil {
		metrics.RecordRefresh(d.Name, "failed")
		r.logger.Info("Background refresh failed, keeping cached items",
			zap.String("domain", d.Name), zap.Error(err))
		return
	}
	if r.publish(s, d, newResult(items, TierRemote), func() {
		r.cache.Set(d.CacheKey, items, d.TTL)
	}) {
		metrics.RecordRefresh(d.Name, "ok")
	}
}

// load runs the domain loader, turning panics and empty output into errors.
func (r *Resolver) load(ctx context.Context, d Domain, previous []item.DisplayItem) (items []item.DisplayItem, err error) {
	if d.Loader == nil {
		return nil, fault.Unconfigured(d.Name)
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			items = nil
			err = errors.New(errors.CodeInternal, fmt.Sprintf("%s loader panicked: %v", d.Name, p))
		}
		metrics.ObserveLoad(d.Name, time.Since(start).Seconds())
	}()

	items, err = d.Loader.Load(ctx, previous)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fault.Empty("%s: loader returned no items", d.Name)
	}
	return items, nil
}

func (r *Resolver) publish(s *Session, d Domain, res Result, write func()) bool {
	if !s.apply(res, write) {
		return false
	}
	metrics.RecordResolution(d.Name, string(res.Tier))
	r.logger.Debug("Resolved",
		zap.String("domain", d.Name),
		zap.String("tier", string(res.Tier)),
		zap.Int("items", len(res.Items)))
	return true
}
