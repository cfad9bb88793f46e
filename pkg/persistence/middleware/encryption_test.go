package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/scribe/pkg/adapters/memory"
	"github.com/aretw0/scribe/pkg/persistence/middleware"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.ResponseCache, cfg middleware.EncryptionConfig) ports.ResponseCache {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunResponseCacheContract(t, encrypted(t, memory.NewCache(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewCache()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.Set(ctx, "k", "my-secret-sauce"))

	// Underlying cache must only hold the envelope
	stored, err := underlying.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotContains(t, stored, "my-secret-sauce")
	assert.True(t, strings.HasPrefix(stored, "enc:v1:"))

	got, err := secure.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", got)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewCache()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldCache := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldCache.Set(ctx, "k", "encrypted-with-old-key"))

	newCache := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	got, err := newCache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-with-old-key", got)

	require.NoError(t, newCache.Set(ctx, "k", "encrypted-with-new-key"))

	// An entry the keys cannot open reads as a miss
	_, err = oldCache.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestEncryptionMiddleware_PlainEntryIsMiss(t *testing.T) {
	underlying := memory.NewCache()
	ctx := context.Background()
	require.NoError(t, underlying.Set(ctx, "k", "plain"))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("old")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = middleware.ParseKey(base64.StdEncoding.EncodeToString(key) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.ParseKey("not a key!")
	assert.Error(t, err)
}
