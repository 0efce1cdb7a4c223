package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebenkosten/internal/config"
	"nebenkosten/internal/infrastructure/storage/file"
	"nebenkosten/internal/infrastructure/storage/memory"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	blobs, release, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &memory.Store{}, blobs)

	dir := t.TempDir()
	blobs, release, err = Open(ctx, config.StorageConfig{Driver: config.DriverFile, Dir: dir})
	require.NoError(t, err)
	defer release()
	require.IsType(t, &file.Store{}, blobs)
	assert.Equal(t, dir, blobs.(*file.Store).Dir())

	_, _, err = Open(ctx, config.StorageConfig{Driver: "redis"})
	assert.Error(t, err)
}
