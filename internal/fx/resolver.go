// Package fx resolves historical sell-price exchange rates for calendar
// days. A day without a quote is retried on the preceding days, up to a
// bounded look-back window; every day is resolved at most once per Resolver.
package fx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LookbackDays is how many calendar days a lookup may step back from the
// requested day. The requested day is tried first, so a day D is resolved
// from the window [D-LookbackDays, D].
const LookbackDays = 7

// FallbackRate is applied by callers when a day resolves to no quote.
var FallbackRate = decimal.NewFromInt(1)

// Resolution is the outcome of resolving one requested day.
type Resolution struct {
	Requested Date            `json:"requested"`
	QuotedOn  Date            `json:"quoted_on"`
	Rate      decimal.Decimal `json:"rate"`
	Found     bool            `json:"found"`
}

// Rates is a read-only snapshot of resolved days.
type Rates struct {
	m map[Date]Resolution
}

func NewRates(res ...Resolution) Rates {
	m := make(map[Date]Resolution, len(res))
	for _, r := range res {
		m[r.Requested] = r
	}
	return Rates{m: m}
}

func (r Rates) Get(d Date) (Resolution, bool) {
	res, ok := r.m[d]
	if !ok || !res.Found {
		return res, false
	}
	return res, true
}

// RateOrFallback returns the resolved rate for d, or FallbackRate when d has
// no quote within the look-back window.
func (r Rates) RateOrFallback(d Date) decimal.Decimal {
	if res, ok := r.Get(d); ok {
		return res.Rate
	}
	return FallbackRate
}

func (r Rates) Len() int {
	return len(r.m)
}

type Option func(*Resolver)

// WithConcurrency bounds the number of days resolved in parallel.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLookbackDays sets how many days before the requested one are tried.
// Zero restricts lookups to the requested day.
func WithLookbackDays(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.lookback = n
		}
	}
}

// Resolver memoizes resolutions for the lifetime of one report run.
type Resolver struct {
	provider    Provider
	concurrency int
	lookback    int

	group   singleflight.Group
	mu      sync.Mutex
	cache   map[Date]Resolution
	lookups atomic.Int64
}

func NewResolver(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider:    provider,
		concurrency: 8,
		lookback:    LookbackDays,
		cache:       make(map[Date]Resolution),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a best-effort rate for every requested day. It never fails:
// provider errors count as a missing quote for that day.
func (r *Resolver) Resolve(ctx context.Context, dates []Date) Rates {
	unique := make([]Date, 0, len(dates))
	seen := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	results := make([]Resolution, len(unique))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, d := range unique {
		g.Go(func() error {
			results[i] = r.resolveOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	return NewRates(results...)
}

// Lookups reports how many provider calls this resolver has issued.
func (r *Resolver) Lookups() int64 {
	return r.lookups.Load()
}

func (r *Resolver) resolveOne(ctx context.Context, d Date) Resolution {
	if res, ok := r.cached(d); ok {
		return res
	}

	v, _, _ := r.group.Do(d.String(), func() (any, error) {
		if res, ok := r.cached(d); ok {
			return res, nil
		}
		res := r.walk(ctx, d)
		r.mu.Lock()
		r.cache[d] = res
		r.mu.Unlock()
		return res, nil
	})
	return v.(Resolution)
}

func (r *Resolver) cached(d Date) (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.cache[d]
	return res, ok
}

func (r *Resolver) walk(ctx context.Context, d Date) Resolution {
	for candidate := range Lookback(d, r.lookback+1) {
		r.lookups.Add(1)
		rate, ok, err := r.provider.SellRate(ctx, candidate)
		if err != nil {
			log.Debug().Err(err).Str("date", d.String()).Str("candidate", candidate.String()).Msg("quote lookup failed")
			continue
		}
		if !ok || !rate.IsPositive() {
			log.Debug().Str("date", d.String()).Str("candidate", candidate.String()).Msg("no quote for day")
			continue
		}
		return Resolution{Requested: d, QuotedOn: candidate, Rate: rate, Found: true}
	}

	log.Warn().
		Str("date", d.String()).
		Int("lookback_days", r.lookback).
		Msg("no quote within look-back window, fallback rate applies")
	return Resolution{Requested: d}
}
