package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/lock"
	"interview-scheduler/internal/repo"
)

func TestOpenStore_Memory(t *testing.T) {
	cfg := &config.Config{Store: config.Store{Driver: "memory"}}
	s, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &repo.TimeSlotMemoryRepo{}, s.SlotStore)
	assert.Nil(t, s.Mongo)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.Store{Driver: "cassandra"}}
	_, err := OpenStore(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "cassandra")
}

func TestOpenCoordination_Local(t *testing.T) {
	c, err := OpenCoordination(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &lock.Local{}, c.Locker)
	assert.Nil(t, c.Cache)
}
