package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// fakeRedis keeps values in a map and ignores TTLs.
type fakeRedis struct {
	values map[string]string
	err    error
	sets   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		cmd := redis.NewStringCmd(ctx, "get", key)
		cmd.SetErr(f.err)
		return cmd
	}
	val, ok := f.values[key]
	if !ok {
		cmd := redis.NewStringCmd(ctx, "get", key)
		cmd.SetErr(redis.Nil)
		return cmd
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		cmd := redis.NewStatusCmd(ctx, "set", key)
		cmd.SetErr(f.err)
		return cmd
	}
	f.sets++
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateRoundTrip(t *testing.T) {
	c := New(newFakeRedis(), 0, 0, discard())
	ctx := context.Background()

	_, err := c.GetRate(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetRate(ctx, 5.42))

	rate, err := c.GetRate(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 5.42, rate, 1e-9)
}

func TestGetRateRejectsGarbage(t *testing.T) {
	fake := newFakeRedis()
	fake.values[rateKey] = "not-a-number"
	c := New(fake, 0, 0, discard())

	_, err := c.GetRate(context.Background())
	assert.ErrorIs(t, err, ErrMiss)
}

func TestAnalysisRoundTrip(t *testing.T) {
	c := New(newFakeRedis(), 0, 0, discard())
	ctx := context.Background()

	analysis := &models.MarketAnalysis{
		ProductName:      "Xiaomi Redmi Note 13",
		OpportunityScore: 8,
		MarketPosition:   models.PositionCompetitive,
	}
	require.NoError(t, c.SetAnalysis(ctx, analysis))

	// Lookup is case and whitespace insensitive.
	got, err := c.GetAnalysis(ctx, "  xiaomi REDMI note 13 ")
	require.NoError(t, err)
	assert.Equal(t, analysis.ProductName, got.ProductName)
	assert.InDelta(t, 8.0, got.OpportunityScore, 1e-9)
}

func TestRateProviderPrefersCache(t *testing.T) {
	fake := newFakeRedis()
	c := New(fake, 0, 0, discard())
	require.NoError(t, c.SetRate(context.Background(), 5.6))

	fetcher := &countingFetcher{rate: 5.1}
	provider := NewRateProvider(c, fetcher, discard())

	rate, err := provider.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.6, rate, 1e-9)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRateProviderFetchesOnMiss(t *testing.T) {
	fake := newFakeRedis()
	provider := NewRateProvider(New(fake, 0, 0, discard()), &countingFetcher{rate: 5.35}, discard())

	rate, err := provider.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.35, rate, 1e-9)

	// The fetched rate lands in the cache.
	assert.Equal(t, 1, fake.sets)
}

func TestRateProviderFetcherError(t *testing.T) {
	provider := NewRateProvider(New(newFakeRedis(), 0, 0, discard()), &countingFetcher{err: errors.New("page unreachable")}, discard())

	_, err := provider.CurrentRate(context.Background())
	assert.Error(t, err)
}

type countingFetcher struct {
	rate  float64
	err   error
	calls int
}

func (f *countingFetcher) CurrentExchangeRate(context.Context) (float64, error) {
	f.calls++
	return f.rate, f.err
}
