package fx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu     sync.Mutex
	quotes map[Date]decimal.Decimal
	fail   map[Date]bool
	calls  map[Date]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		quotes: map[Date]decimal.Decimal{},
		fail:   map[Date]bool{},
		calls:  map[Date]int{},
	}
}

func (f *fakeProvider) SellRate(_ context.Context, day Date) (decimal.Decimal, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[day]++
	if f.fail[day] {
		return decimal.Zero, false, errors.New("provider unavailable")
	}
	rate, ok := f.quotes[day]
	return rate, ok, nil
}

func (f *fakeProvider) callsFor(day Date) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[day]
}

func TestLookback(t *testing.T) {
	d := NewDate(2024, time.March, 2)

	var got []string
	for c := range Lookback(d, 4) {
		got = append(got, c.String())
	}

	assert.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-02-29", "2024-02-28"}, got)
}

func TestResolver_ExactDay(t *testing.T) {
	d := NewDate(2024, time.May, 6)
	p := newFakeProvider()
	p.quotes[d] = decimal.RequireFromString("3.745")

	rates := NewResolver(p).Resolve(context.Background(), []Date{d})

	res, ok := rates.Get(d)
	require.True(t, ok)
	assert.Equal(t, d, res.QuotedOn)
	assert.True(t, res.Rate.Equal(decimal.RequireFromString("3.745")))
}

func TestResolver_WalksBackToEarlierQuote(t *testing.T) {
	d := NewDate(2024, time.May, 6)
	p := newFakeProvider()
	p.quotes[d.AddDays(-3)] = decimal.RequireFromString("3.71")

	r := NewResolver(p)
	rates := r.Resolve(context.Background(), []Date{d})

	res, ok := rates.Get(d)
	require.True(t, ok)
	assert.Equal(t, d.AddDays(-3), res.QuotedOn)
	assert.True(t, res.Rate.Equal(decimal.RequireFromString("3.71")))
	assert.Equal(t, int64(4), r.Lookups())
}

func TestResolver_ProviderErrorCountsAsMissingDay(t *testing.T) {
	d := NewDate(2024, time.May, 6)
	p := newFakeProvider()
	p.fail[d] = true
	p.fail[d.AddDays(-1)] = true
	p.quotes[d.AddDays(-2)] = decimal.RequireFromString("3.80")

	rates := NewResolver(p).Resolve(context.Background(), []Date{d})

	res, ok := rates.Get(d)
	require.True(t, ok)
	assert.Equal(t, d.AddDays(-2), res.QuotedOn)
}

func TestResolver_OldestDayOfWindowIsUsed(t *testing.T) {
	d := NewDate(2024, time.January, 10)
	p := newFakeProvider()
	p.quotes[d.AddDays(-LookbackDays)] = decimal.RequireFromString("3.90")

	r := NewResolver(p)
	rates := r.Resolve(context.Background(), []Date{d})

	res, ok := rates.Get(d)
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", res.QuotedOn.String())
	assert.True(t, res.Rate.Equal(decimal.RequireFromString("3.90")))
	assert.Equal(t, int64(LookbackDays+1), r.Lookups())
}

func TestResolver_ExhaustedWindowIsAbsent(t *testing.T) {
	d := NewDate(2024, time.January, 10)
	p := newFakeProvider()
	p.quotes[d.AddDays(-LookbackDays-1)] = decimal.RequireFromString("3.90")

	r := NewResolver(p)
	rates := r.Resolve(context.Background(), []Date{d})

	_, ok := rates.Get(d)
	assert.False(t, ok)
	assert.True(t, rates.RateOrFallback(d).Equal(FallbackRate))
	assert.Equal(t, int64(LookbackDays+1), r.Lookups())
	assert.Zero(t, p.callsFor(d.AddDays(-LookbackDays-1)))
}

func TestResolver_ZeroLookbackTriesOnlyRequestedDay(t *testing.T) {
	d := NewDate(2024, time.January, 10)
	p := newFakeProvider()
	p.quotes[d.AddDays(-1)] = decimal.RequireFromString("3.90")

	r := NewResolver(p, WithLookbackDays(0))
	rates := r.Resolve(context.Background(), []Date{d})

	_, ok := rates.Get(d)
	assert.False(t, ok)
	assert.Equal(t, int64(1), r.Lookups())
}

func TestResolver_CachesAcrossCalls(t *testing.T) {
	a := NewDate(2024, time.June, 3)
	b := NewDate(2024, time.June, 4)
	c := NewDate(2024, time.June, 5)
	p := newFakeProvider()
	for _, d := range []Date{a, b, c} {
		p.quotes[d] = decimal.RequireFromString("3.70")
	}

	r := NewResolver(p)
	first := r.Resolve(context.Background(), []Date{a, b, a, b})
	second := r.Resolve(context.Background(), []Date{b, c})

	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 2, second.Len())
	assert.Equal(t, 1, p.callsFor(a))
	assert.Equal(t, 1, p.callsFor(b))
	assert.Equal(t, 1, p.callsFor(c))
	assert.Equal(t, int64(3), r.Lookups())
}

func TestResolver_ConcurrentFanOut(t *testing.T) {
	p := newFakeProvider()
	base := NewDate(2024, time.July, 1)
	var dates []Date
	for i := 0; i < 30; i++ {
		d := base.AddDays(i)
		p.quotes[d] = decimal.NewFromFloat(3.5 + float64(i)/100)
		dates = append(dates, d, d)
	}

	r := NewResolver(p, WithConcurrency(4))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rates := r.Resolve(context.Background(), dates)
			assert.Equal(t, 30, rates.Len())
		}()
	}
	wg.Wait()

	for i := 0; i < 30; i++ {
		assert.Equal(t, 1, p.callsFor(base.AddDays(i)))
	}
}
