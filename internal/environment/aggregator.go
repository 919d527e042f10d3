package environment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// #region aggregator

// Aggregator composes weather, cultural, economic and geopolitical data
// for a location. Every category settles on its own: a failing source is
// replaced by its fallback and never fails the whole context.
type Aggregator struct {
	providers Providers
	cache     CacheStore
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache replaces the default in-memory store.
func WithCache(c CacheStore) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l.Named("aggregator")
		}
	}
}

// WithClock sets the clock used for cache freshness.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an aggregator over providers with a bounded
// in-memory cache using DefaultTTLs.
func NewAggregator(p Providers, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers: p,
		cache:     NewMemoryStore(DefaultMaxEntries, DefaultTTLs),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// #endregion aggregator

// #region get-context

// GetContext fetches all four categories concurrently and waits for every
// one to settle. at stamps the result; the zero time means now.
func (a *Aggregator) GetContext(ctx context.Context, loc Location, at time.Time) Context {
	if at.IsZero() {
		at = a.now()
	}
	country := CountryFor(loc)

	var (
		weather      WeatherData
		cultural     CulturalProfile
		economic     EconomicProfile
		geopolitical GeopoliticalProfile
		srcs         [4]Source
	)

	// Goroutines never return an error so one failure cannot cancel the rest.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		weather, srcs[0], err = fetchCategory(a, CategoryWeather, loc.Key(), func() (WeatherData, error) {
			if a.providers.Weather == nil {
				return WeatherData{}, ErrNoProvider
			}
			r, err := a.providers.Weather.CurrentWeather(ctx, loc)
			if err != nil {
				return WeatherData{}, err
			}
			return DeriveWeather(r), nil
		})
		if err != nil {
			weather = FallbackWeather()
			a.warnFallback(CategoryWeather, loc.Key(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cultural, srcs[1], err = fetchCategory(a, CategoryCultural, country, func() (CulturalProfile, error) {
			if a.providers.Cultural == nil {
				return CulturalProfile{}, ErrNoProvider
			}
			return a.providers.Cultural.Cultural(ctx, country)
		})
		if err != nil {
			cultural = FallbackCultural(country)
			a.warnFallback(CategoryCultural, country, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		economic, srcs[2], err = fetchCategory(a, CategoryEconomic, country, func() (EconomicProfile, error) {
			if a.providers.Economic == nil {
				return EconomicProfile{}, ErrNoProvider
			}
			return a.providers.Economic.Economic(ctx, country)
		})
		if err != nil {
			economic = FallbackEconomic(country)
			a.warnFallback(CategoryEconomic, country, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		geopolitical, srcs[3], err = fetchCategory(a, CategoryGeopolitical, country, func() (GeopoliticalProfile, error) {
			if a.providers.Geopolitical == nil {
				return GeopoliticalProfile{}, ErrNoProvider
			}
			return a.providers.Geopolitical.Geopolitical(ctx, country)
		})
		if err != nil {
			geopolitical = FallbackGeopolitical(country)
			a.warnFallback(CategoryGeopolitical, country, err)
		}
		return nil
	})
	_ = g.Wait()

	out := Context{
		Weather:      weather,
		Cultural:     cultural,
		Economic:     economic,
		Geopolitical: geopolitical,
		Timestamp:    at,
		Location:     loc,
		Country:      country,
		Sources:      make(map[Category]Source, len(Categories)),
	}
	for i, cat := range Categories {
		out.Sources[cat] = srcs[i]
		if srcs[i] == SourceFallback {
			out.Degraded = true
		}
	}

	a.logger.Debug("context composed",
		zap.String("location", loc.Key()),
		zap.String("country", country),
		zap.Bool("degraded", out.Degraded),
		zap.Any("sources", out.Sources),
	)
	return out
}

func (a *Aggregator) warnFallback(cat Category, key string, err error) {
	a.logger.Warn("category fell back",
		zap.String("category", string(cat)),
		zap.String("key", key),
		zap.Error(err),
	)
}

// #endregion get-context

// #region fetch

// fetchCategory serves a fresh cache entry of the right type, or calls
// fetch and caches its result. A failed fetch returns SourceFallback and
// leaves the cache untouched.
func fetchCategory[T any](a *Aggregator, cat Category, key string, fetch func() (T, error)) (T, Source, error) {
	ck := CacheKey{Category: cat, Key: key}
	if e, ok := a.cache.Get(ck); ok && !a.cache.IsExpired(e, a.now()) {
		if v, ok := e.Data.(T); ok {
			return v, SourceCache, nil
		}
	}

	v, err := recovered(fetch)
	if err != nil {
		var zero T
		return zero, SourceFallback, err
	}
	a.cache.Set(ck, Entry{Data: v, FetchedAt: a.now(), Category: cat})
	return v, SourceLive, nil
}

// recovered turns a provider panic into an error.
func recovered[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return fn()
}

// #endregion fetch
