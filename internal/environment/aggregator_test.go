package environment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// #region stubs

type stubWeather struct {
	calls   atomic.Int32
	reading WeatherReading
	err     error
	panics  bool
}

func (s *stubWeather) CurrentWeather(_ context.Context, _ Location) (WeatherReading, error) {
	s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	return s.reading, s.err
}

type failingProfiles struct{}

func (failingProfiles) Cultural(context.Context, string) (CulturalProfile, error) {
	return CulturalProfile{}, errors.New("cultural down")
}

func (failingProfiles) Economic(context.Context, string) (EconomicProfile, error) {
	return EconomicProfile{}, errors.New("economic down")
}

func (failingProfiles) Geopolitical(context.Context, string) (GeopoliticalProfile, error) {
	return GeopoliticalProfile{}, errors.New("geopolitical down")
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// rendezvous releases its callers only once want of them have arrived.
// A caller that waits longer than the timeout gives up with an error.
type rendezvous struct {
	mu      sync.Mutex
	arrived int
	want    int
	done    chan struct{}
	timeout time.Duration
}

func newRendezvous(want int) *rendezvous {
	return &rendezvous{want: want, done: make(chan struct{}), timeout: 2 * time.Second}
}

func (r *rendezvous) arrive(ctx context.Context) error {
	r.mu.Lock()
	r.arrived++
	if r.arrived == r.want {
		close(r.done)
	}
	r.mu.Unlock()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("rendezvous timed out")
	}
}

// rendezvousProviders serves static data after meeting at r. Categories in
// failFast fail immediately without arriving.
type rendezvousProviders struct {
	r        *rendezvous
	failFast map[Category]bool
}

func (p rendezvousProviders) CurrentWeather(ctx context.Context, _ Location) (WeatherReading, error) {
	if p.failFast[CategoryWeather] {
		return WeatherReading{}, errors.New("weather down")
	}
	if err := p.r.arrive(ctx); err != nil {
		return WeatherReading{}, err
	}
	return WeatherReading{Temperature: 21, Humidity: 45, ConditionID: 800}, nil
}

func (p rendezvousProviders) Cultural(ctx context.Context, country string) (CulturalProfile, error) {
	if p.failFast[CategoryCultural] {
		return CulturalProfile{}, errors.New("cultural down")
	}
	if err := p.r.arrive(ctx); err != nil {
		return CulturalProfile{}, err
	}
	return StaticProfiles{}.Cultural(ctx, country)
}

func (p rendezvousProviders) Economic(ctx context.Context, country string) (EconomicProfile, error) {
	if p.failFast[CategoryEconomic] {
		return EconomicProfile{}, errors.New("economic down")
	}
	if err := p.r.arrive(ctx); err != nil {
		return EconomicProfile{}, err
	}
	return StaticProfiles{}.Economic(ctx, country)
}

func (p rendezvousProviders) Geopolitical(ctx context.Context, country string) (GeopoliticalProfile, error) {
	if p.failFast[CategoryGeopolitical] {
		return GeopoliticalProfile{}, errors.New("geopolitical down")
	}
	if err := p.r.arrive(ctx); err != nil {
		return GeopoliticalProfile{}, err
	}
	return StaticProfiles{}.Geopolitical(ctx, country)
}

func (p rendezvousProviders) all() Providers {
	return Providers{Weather: p, Cultural: p, Economic: p, Geopolitical: p}
}

var seoul = Location{Latitude: 37.5665, Longitude: 126.9780}

func staticProviders(w WeatherProvider) Providers {
	return Providers{
		Weather:      w,
		Cultural:     StaticProfiles{},
		Economic:     StaticProfiles{},
		Geopolitical: StaticProfiles{},
	}
}

// #endregion stubs

// #region tests

func TestGetContextAllLive(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w := &stubWeather{reading: WeatherReading{Temperature: 24, Humidity: 55, UVIndex: 4, AirQuality: 40, ConditionID: 800, Description: "clear sky"}}
	agg := NewAggregator(staticProviders(w))

	got := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.False(t, got.Degraded)
	assert.Empty(t, got.FallbackCategories())
	assert.Equal(t, "KR", got.Country)
	assert.Equal(t, "KRW", got.Economic.Currency)
	assert.Equal(t, 24.0, got.Weather.Reading.Temperature)
	assert.Equal(t, RiskLow, got.Weather.RiskLevel)
	for _, cat := range Categories {
		assert.Equal(t, SourceLive, got.Sources[cat], "category %s", cat)
	}
	assert.False(t, got.Timestamp.IsZero())
}

func TestGetContextWeatherFailureFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w := &stubWeather{err: errors.New("provider timeout")}
	agg := NewAggregator(staticProviders(w))

	got := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.True(t, got.Degraded)
	assert.Equal(t, FallbackWeather(), got.Weather)
	assert.Equal(t, 20.0, got.Weather.Reading.Temperature)
	assert.Equal(t, 50.0, got.Weather.Reading.Humidity)
	assert.Equal(t, []Category{CategoryWeather}, got.FallbackCategories())
	// the other categories are unaffected
	assert.Equal(t, "ko", got.Cultural.Language)
	assert.Equal(t, SourceLive, got.Sources[CategoryCultural])
}

func TestGetContextAllFailing(t *testing.T) {
	agg := NewAggregator(Providers{
		Weather:      &stubWeather{err: errors.New("down")},
		Cultural:     failingProfiles{},
		Economic:     failingProfiles{},
		Geopolitical: failingProfiles{},
	})

	got := agg.GetContext(context.Background(), Location{Latitude: 40.71, Longitude: -74.0}, time.Time{})

	assert.True(t, got.Degraded)
	assert.Equal(t, Categories, got.FallbackCategories())
	assert.Equal(t, FallbackCultural("US"), got.Cultural)
	assert.Equal(t, FallbackEconomic("US"), got.Economic)
	assert.Equal(t, FallbackGeopolitical("US"), got.Geopolitical)
}

func TestGetContextNilProvidersFallBack(t *testing.T) {
	agg := NewAggregator(Providers{})
	got := agg.GetContext(context.Background(), seoul, time.Time{})
	assert.True(t, got.Degraded)
	assert.Len(t, got.FallbackCategories(), 4)
}

func TestGetContextProviderPanicFallsBack(t *testing.T) {
	w := &stubWeather{panics: true}
	agg := NewAggregator(staticProviders(w))

	got := agg.GetContext(context.Background(), seoul, time.Time{})
	assert.True(t, got.Degraded)
	assert.Equal(t, FallbackWeather(), got.Weather)
}

func TestWeatherCacheHitWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := &stubWeather{reading: WeatherReading{Temperature: 12, ConditionID: 801}}
	agg := NewAggregator(staticProviders(w), WithClock(clock.Now))

	first := agg.GetContext(context.Background(), seoul, time.Time{})
	clock.Advance(10 * time.Minute)
	second := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, SourceLive, first.Sources[CategoryWeather])
	assert.Equal(t, SourceCache, second.Sources[CategoryWeather])
	assert.Equal(t, first.Weather, second.Weather)
}

func TestWeatherCacheExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := &stubWeather{reading: WeatherReading{Temperature: 12, ConditionID: 801}}
	agg := NewAggregator(staticProviders(w), WithClock(clock.Now))

	agg.GetContext(context.Background(), seoul, time.Time{})
	clock.Advance(30 * time.Minute)
	got := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.Equal(t, int32(2), w.calls.Load())
	assert.Equal(t, SourceLive, got.Sources[CategoryWeather])
	// cultural lives 24h and is still cached
	assert.Equal(t, SourceCache, got.Sources[CategoryCultural])
}

func TestFallbackIsNotCached(t *testing.T) {
	w := &stubWeather{err: errors.New("down")}
	agg := NewAggregator(staticProviders(w))

	agg.GetContext(context.Background(), seoul, time.Time{})
	w.err = nil
	w.reading = WeatherReading{Temperature: 5, ConditionID: 500}
	got := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.Equal(t, int32(2), w.calls.Load())
	assert.False(t, got.Degraded)
	assert.Equal(t, 5.0, got.Weather.Reading.Temperature)
}

func TestMismatchedCacheEntryIsMiss(t *testing.T) {
	store := NewMemoryStore(16, nil)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store.Set(CacheKey{Category: CategoryWeather, Key: seoul.Key()}, Entry{
		Data:      "corrupt",
		FetchedAt: clock.Now(),
		Category:  CategoryWeather,
	})
	w := &stubWeather{reading: WeatherReading{Temperature: 18, ConditionID: 800}}
	agg := NewAggregator(staticProviders(w), WithCache(store), WithClock(clock.Now))

	got := agg.GetContext(context.Background(), seoul, time.Time{})

	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, 18.0, got.Weather.Reading.Temperature)
}

func TestGetContextUsesGivenTimestamp(t *testing.T) {
	at := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	agg := NewAggregator(staticProviders(&stubWeather{}))
	got := agg.GetContext(context.Background(), seoul, at)
	require.Equal(t, at, got.Timestamp)
	assert.Equal(t, seoul, got.Location)
}

// Every provider blocks until all four are in flight, so a sequential
// aggregator would time out on the first fetch and fall back.
func TestGetContextFetchesCategoriesConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := rendezvousProviders{r: newRendezvous(4)}
	agg := NewAggregator(p.all())

	start := time.Now()
	got := agg.GetContext(context.Background(), seoul, time.Time{})
	elapsed := time.Since(start)

	assert.False(t, got.Degraded)
	for _, cat := range Categories {
		assert.Equal(t, SourceLive, got.Sources[cat], "category %s", cat)
	}
	assert.Less(t, elapsed, time.Second)
}

// One category failing at once must not cancel or delay the other three,
// which still need each other to finish.
func TestGetContextCategoriesSettleIndependently(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	for _, failing := range Categories {
		t.Run(string(failing), func(t *testing.T) {
			p := rendezvousProviders{r: newRendezvous(3), failFast: map[Category]bool{failing: true}}
			agg := NewAggregator(p.all())

			got := agg.GetContext(context.Background(), seoul, time.Time{})

			assert.True(t, got.Degraded)
			assert.Equal(t, []Category{failing}, got.FallbackCategories())
			for _, cat := range Categories {
				if cat != failing {
					assert.Equal(t, SourceLive, got.Sources[cat], "category %s", cat)
				}
			}
		})
	}
}

func TestGetContextConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w := &stubWeather{reading: WeatherReading{Temperature: 21, ConditionID: 800}}
	agg := NewAggregator(staticProviders(w))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := agg.GetContext(context.Background(), seoul, time.Time{})
			assert.False(t, got.Degraded)
		}()
	}
	wg.Wait()
	// no single-flight: concurrent misses may each fetch
	assert.GreaterOrEqual(t, w.calls.Load(), int32(1))
	assert.LessOrEqual(t, w.calls.Load(), int32(16))
}

// #endregion tests
