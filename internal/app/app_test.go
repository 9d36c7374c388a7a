package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/prestamos/internal/config"
	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

func TestNewRateCache(t *testing.T) {
	t.Run("MemoryWithoutURL", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Redis.RateTTL = time.Minute

		c, err := newRateCache(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &rates.MemoryCache{}, c)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		cfg := &config.Config{}
		cfg.Redis.URL = "redis://" + mr.Addr()

		c, err := newRateCache(context.Background(), cfg)
		require.NoError(t, err)
		require.IsType(t, &rates.RedisCache{}, c)
		assert.NoError(t, c.(*rates.RedisCache).Close())
	})

	t.Run("RedisUnreachable", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Redis.URL = "redis://127.0.0.1:1"

		_, err := newRateCache(context.Background(), cfg)
		assert.ErrorContains(t, err, "connecting to redis")
	})
}

func TestServices_Close(t *testing.T) {
	var order []int

	s := &Services{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return assert.AnError },
	}}

	s.Close()

	assert.Equal(t, []int{2, 1}, order)
}
