package cachestore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	entry := &Entry{
		Key:           "commits:author:alice",
		ETag:          `"abc"`,
		Payload:       json.RawMessage(`[{"sha":"aaa"}]`),
		MaxAgeSeconds: 60,
		Private:       true,
		StoredAt:      time.Now(),
	}

	require.NoError(t, store.Set(context.Background(), entry.Key, entry, time.Minute))

	got, err := store.Get(context.Background(), entry.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ETag, got.ETag)
	assert.JSONEq(t, `[{"sha":"aaa"}]`, string(got.Payload))
}

func TestMemoryStore_MissReturnsNil(t *testing.T) {
	store := NewMemoryStore()
	got, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_ExpiredEntryIsDropped(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.clock = func() time.Time { return now }

	entry := &Entry{Key: "k", ETag: `"abc"`}
	require.NoError(t, store.Set(context.Background(), entry.Key, entry, time.Minute))

	now = now.Add(2 * time.Minute)
	got, err := store.Get(context.Background(), entry.Key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_OverwriteReplacesEntry(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", &Entry{ETag: `"old"`}, time.Minute))
	require.NoError(t, store.Set(context.Background(), "k", &Entry{ETag: `"new"`}, time.Minute))

	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `"new"`, got.ETag)
}
