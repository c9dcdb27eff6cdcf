package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string][]byte

func (m mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m mapStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := mapStore{}

	type payload struct {
		Number string `json:"number"`
	}
	require.NoError(t, SetJSON(ctx, store, "k", payload{Number: "PO-2026-000001"}, time.Minute))

	var got payload
	require.NoError(t, GetJSON(ctx, store, "k", &got))
	assert.Equal(t, "PO-2026-000001", got.Number)

	store["bad"] = []byte("{")
	assert.Error(t, GetJSON(ctx, store, "bad", &got))
	assert.ErrorIs(t, GetJSON(ctx, store, "missing", &got), ErrCacheMiss)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	store := NewNoop()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, store.Delete(ctx, "k"))
	assert.ErrorIs(t, GetJSON(ctx, nil, "k", &struct{}{}), ErrCacheMiss)
}
