package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

type memoryStore struct {
	dropped  bool
	dropErr  error
	indexErr error
	phones   map[string]bool
	inserted []domain.Restaurant
}

func newMemoryStore(existingPhones ...string) *memoryStore {
	s := &memoryStore{phones: map[string]bool{}}
	for _, p := range existingPhones {
		s.phones[p] = true
	}
	return s
}

func (s *memoryStore) Drop(context.Context) error {
	s.dropped = true
	if s.dropErr != nil {
		return s.dropErr
	}
	s.phones = map[string]bool{}
	return nil
}

func (s *memoryStore) EnsureIndexes(context.Context) error { return s.indexErr }

func (s *memoryStore) Insert(_ context.Context, r *domain.Restaurant) error {
	if s.phones[r.Phone] {
		return apperrors.NewDuplicatePhoneError(r.Phone)
	}
	s.phones[r.Phone] = true
	r.ID = fmt.Sprintf("%024d", len(s.inserted)+1)
	s.inserted = append(s.inserted, *r)
	return nil
}

func TestSampleRestaurants_AreUniqueAndEnriched(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := sampleRestaurants(now)
	require.NotEmpty(t, samples)

	phones := map[string]bool{}
	for _, r := range samples {
		assert.False(t, r.HasID(), r.Name)
		assert.NotEmpty(t, r.Timezone, r.Name)
		assert.NotEmpty(t, r.Country, r.Name)
		assert.Equal(t, now, r.CreatedAt)
		assert.False(t, phones[r.Phone], "duplicate phone %s", r.Phone)
		phones[r.Phone] = true
	}
}

func TestSeed_InsertsAll(t *testing.T) {
	store := newMemoryStore()
	samples := sampleRestaurants(time.Now())

	result, err := seed(context.Background(), store, samples, false, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, len(samples), result.inserted)
	assert.Zero(t, result.skipped)
	assert.False(t, store.dropped)
	for _, r := range store.inserted {
		assert.True(t, r.HasID())
	}
}

func TestSeed_SkipsDuplicatePhones(t *testing.T) {
	samples := sampleRestaurants(time.Now())
	store := newMemoryStore(samples[0].Phone)

	result, err := seed(context.Background(), store, samples, false, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, len(samples)-1, result.inserted)
	assert.Equal(t, 1, result.skipped)
}

func TestSeed_DropClearsFirst(t *testing.T) {
	samples := sampleRestaurants(time.Now())
	store := newMemoryStore(samples[0].Phone)

	result, err := seed(context.Background(), store, samples, true, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.True(t, store.dropped)
	assert.Equal(t, len(samples), result.inserted)
}

func TestSeed_DropFailureIsNotFatal(t *testing.T) {
	store := newMemoryStore()
	store.dropErr = errors.New("ns not found")

	result, err := seed(context.Background(), store, sampleRestaurants(time.Now()), true, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.NotZero(t, result.inserted)
}

func TestSeed_IndexFailureStops(t *testing.T) {
	store := newMemoryStore()
	store.indexErr = errors.New("not primary")

	_, err := seed(context.Background(), store, sampleRestaurants(time.Now()), false, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestRun_ReturnsConfigErrors(t *testing.T) {
	for _, key := range []string{"MONGO_URL", "MONGO_URI"} {
		t.Setenv(key, "")
	}

	err := run(seedOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URL")

	err = run(seedOptions{envFile: t.TempDir() + "/missing.env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.env")
}
