package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yolxander/businki-sub003/internal/config"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := New(&config.Config{Redis: config.RedisCfg{Addr: mr.Addr(), PoolSize: 2}})
	require.NoError(t, err)
	assert.NoError(t, Close(rdb))
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(&config.Config{Redis: config.RedisCfg{Addr: addr}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
