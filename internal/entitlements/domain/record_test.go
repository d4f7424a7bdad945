package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_DeduplicatesFeatures(t *testing.T) {
	record := domain.NewRecord([]domain.Feature{
		domain.FeatureWaterPlan,
		domain.FeatureSolarForecast,
		domain.FeatureWaterPlan,
	}, nil)

	assert.Equal(t, []domain.Feature{domain.FeatureSolarForecast, domain.FeatureWaterPlan}, record.Features)
	assert.Nil(t, record.ExpireAt)
}

func TestNewRecord_CopiesExpiration(t *testing.T) {
	expireAt := time.Now().Add(time.Hour)
	record := domain.NewRecord(nil, &expireAt)

	expireAt = expireAt.Add(time.Hour)
	require.NotNil(t, record.ExpireAt)
	assert.NotEqual(t, expireAt, *record.ExpireAt)
}

func TestRecord_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Millisecond)
	future := now.Add(time.Millisecond)

	tests := []struct {
		name     string
		record   *domain.Record
		expected bool
	}{
		{name: "nil record", record: nil, expected: false},
		{name: "no expiration", record: &domain.Record{}, expected: false},
		{name: "expired", record: &domain.Record{ExpireAt: &past}, expected: true},
		{name: "expires exactly now", record: &domain.Record{ExpireAt: &now}, expected: true},
		{name: "not yet expired", record: &domain.Record{ExpireAt: &future}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.ExpiredAt(now))
		})
	}
}

func TestRecord_JSONShape(t *testing.T) {
	expireAt := time.UnixMilli(1767225600000)
	record := domain.NewRecord([]domain.Feature{domain.FeatureWaterPlan, domain.FeatureSolarForecast}, &expireAt)

	data, err := domain.EncodeRecord(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"features":["solar-forecast","water-plan"],"expireAt":1767225600000}`, string(data))
}

func TestRecord_JSONOmitsMissingExpiration(t *testing.T) {
	data, err := domain.EncodeRecord(domain.NewRecord([]domain.Feature{domain.FeatureWaterPlan}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"features":["water-plan"]}`, string(data))
}

func TestDecodeRecord(t *testing.T) {
	t.Run("with expiration", func(t *testing.T) {
		record, err := domain.DecodeRecord([]byte(`{"features":["road-passability","road-passability"],"expireAt":1000}`))
		require.NoError(t, err)
		assert.Equal(t, []domain.Feature{domain.FeatureRoadPassability}, record.Features)
		require.NotNil(t, record.ExpireAt)
		assert.Equal(t, int64(1000), record.ExpireAt.UnixMilli())
	})

	t.Run("without expiration", func(t *testing.T) {
		record, err := domain.DecodeRecord([]byte(`{"features":[]}`))
		require.NoError(t, err)
		assert.Empty(t, record.Features)
		assert.Nil(t, record.ExpireAt)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		_, err := domain.DecodeRecord([]byte(`{"features":`))
		assert.Error(t, err)
	})

	t.Run("wrong types", func(t *testing.T) {
		var record domain.Record
		err := json.Unmarshal([]byte(`{"features":"solar-forecast"}`), &record)
		assert.Error(t, err)
	})
}
