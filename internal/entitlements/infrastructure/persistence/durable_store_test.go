package persistence

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

type failingBackend struct {
	err error
}

func (b failingBackend) Load(context.Context) (*domain.Record, error) {
	return nil, b.err
}

func (b failingBackend) Save(context.Context, *domain.Record) error {
	return b.err
}

func (b failingBackend) Delete(context.Context) error {
	return b.err
}

type panickingBackend struct{}

func (panickingBackend) Load(context.Context) (*domain.Record, error) {
	panic("disk on fire")
}

func (panickingBackend) Save(context.Context, *domain.Record) error {
	panic("disk on fire")
}

func (panickingBackend) Delete(context.Context) error {
	panic("disk on fire")
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDurableStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDurableStore(NewMemoryBackend(), nil)

	assert.Nil(t, store.Get(ctx))

	expireAt := time.UnixMilli(1_900_000_000_000)
	store.Set(ctx, domain.NewRecord([]domain.Feature{domain.FeatureWaterPlan, domain.FeatureSolarForecast}, &expireAt))

	got := store.Get(ctx)
	require.NotNil(t, got)
	assert.Equal(t, []domain.Feature{domain.FeatureSolarForecast, domain.FeatureWaterPlan}, got.Features)
	require.NotNil(t, got.ExpireAt)
	assert.True(t, expireAt.Equal(*got.ExpireAt))

	store.Clear(ctx)
	assert.Nil(t, store.Get(ctx))
}

func TestDurableStore_SwallowsErrors(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	store := NewDurableStore(failingBackend{err: errors.New("quota exceeded")}, newTestLogger(&buf))

	assert.NotPanics(t, func() {
		assert.Nil(t, store.Get(ctx))
		store.Set(ctx, domain.NewRecord([]domain.Feature{domain.FeatureWaterPlan}, nil))
		store.Clear(ctx)
	})
	assert.Contains(t, buf.String(), "quota exceeded")
	assert.Contains(t, buf.String(), "operation=save")
}

func TestDurableStore_RecoversPanics(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	store := NewDurableStore(panickingBackend{}, newTestLogger(&buf))

	assert.NotPanics(t, func() {
		assert.Nil(t, store.Get(ctx))
		store.Set(ctx, domain.NewRecord(nil, nil))
		store.Clear(ctx)
	})
	assert.Contains(t, buf.String(), "disk on fire")
}
