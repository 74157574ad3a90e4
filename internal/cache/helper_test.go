package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	t.Cleanup(func() { client = nil })
	return mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	found, err := GetJSON(ctx, "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "k", payload{Name: "flock", Count: 3}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "flock", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestAsideFetchesOnMissAndCaches(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "user:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)

	var second payload
	require.NoError(t, Aside(ctx, "user:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should be served from cache")
	assert.Equal(t, "fetched", second.Name)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupMiniredis(t)

	wantErr := errors.New("boom")
	var dest payload
	err := Aside(context.Background(), "user:2", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAsideWorksWithoutRedis(t *testing.T) {
	client = nil

	calls := 0
	var dest payload
	err := Aside(context.Background(), "user:3", &dest, time.Minute, func() error {
		calls++
		dest = payload{Name: "direct"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "direct", dest.Name)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(7), payload{Name: "x"}, time.Minute))
	require.True(t, mr.Exists("user:7"))

	InvalidateUser(ctx, 7)
	assert.False(t, mr.Exists("user:7"))
}
