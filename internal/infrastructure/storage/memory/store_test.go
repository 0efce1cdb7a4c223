package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebenkosten/internal/core/apperror"
)

func TestStore_GetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "nope")
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	blob := []byte(`{"version":1}`)
	require.NoError(t, s.Put(ctx, "k", blob))

	// Neither the input nor the returned slice alias the stored bytes.
	blob[0] = 'X'
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))
	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `{"version":1}`, string(again))

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.True(t, apperror.IsNotFound(err))
}
