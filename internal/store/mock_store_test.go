package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_CopiesBlobs(t *testing.T) {
	mock := NewMockStore()
	ctx := context.Background()

	original := []byte(`{"a":1}`)
	require.NoError(t, mock.Put(ctx, BucketFeed, original))

	// Mutating the caller's slice must not affect the stored copy
	original[2] = 'b'

	blob, err := mock.Get(ctx, BucketFeed)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), blob)
}

func TestMockStore_FailureInjection(t *testing.T) {
	mock := NewMockStore()
	ctx := context.Background()

	mock.PutErr = assert.AnError
	assert.ErrorIs(t, mock.Put(ctx, BucketFeed, []byte(`{}`)), assert.AnError)

	mock.PutErr = nil
	require.NoError(t, mock.Put(ctx, BucketFeed, []byte(`{}`)))

	mock.GetErr = assert.AnError
	_, err := mock.Get(ctx, BucketFeed)
	assert.ErrorIs(t, err, assert.AnError)
}
