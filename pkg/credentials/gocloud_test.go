package credentials

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/localsecrets" // base64key:// keepers for testing
)

// base64key keepers do not persist what they encrypt, so tests seed the
// provider cache directly instead of going through the initial load.
func seededProvider(t *testing.T, creds *Credentials, config Config) (*SecretProvider, func()) {
	t.Helper()
	ctx := context.Background()

	fixedKey := "smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="
	keeper, err := secrets.OpenKeeper(ctx, fmt.Sprintf("base64key://%s", fixedKey))
	require.NoError(t, err)

	provider := &SecretProvider{
		keeper:      keeper,
		config:      config,
		refreshStop: make(chan struct{}),
		refreshDone: make(chan struct{}),
	}

	provider.mu.Lock()
	provider.cachedCreds = creds
	provider.cacheExpiry = time.Now().Add(config.CacheTTL)
	provider.credType = creds.Type
	provider.mu.Unlock()

	close(provider.refreshDone)

	return provider, func() { provider.Close() }
}

func TestSecretProvider_RoundTrip(t *testing.T) {
	ctx := context.Background()

	keeper, err := secrets.OpenKeeper(ctx, "base64key://")
	require.NoError(t, err)
	defer keeper.Close()

	stored := StoredSecret{
		Credentials: &Credentials{
			Type:  TypeToken,
			Token: "round-trip-token",
		},
		Version:   1,
		CreatedAt: time.Now(),
		Metadata:  map[string]string{"created_by": "test"},
	}

	plaintext, err := json.Marshal(stored)
	require.NoError(t, err)

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	require.NoError(t, err)

	decrypted, err := keeper.Decrypt(ctx, ciphertext)
	require.NoError(t, err)

	var decoded StoredSecret
	require.NoError(t, json.Unmarshal(decrypted, &decoded))
	assert.Equal(t, "round-trip-token", decoded.Credentials.Token)
	assert.Equal(t, "test", decoded.Metadata["created_by"])
}

func TestSecretProvider_GetCredentials(t *testing.T) {
	testCreds := &Credentials{
		Type:     TypeToken,
		Token:    "secret-token",
		Metadata: map[string]string{"environment": "test"},
	}

	provider, cleanup := seededProvider(t, testCreds, DefaultConfig())
	defer cleanup()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeToken, creds.Type)
	assert.Equal(t, "secret-token", creds.Token)
	assert.Equal(t, "test", creds.Metadata["environment"])
	assert.Equal(t, TypeToken, provider.Type())
}

func TestSecretProvider_CacheExpiry(t *testing.T) {
	testCreds := &Credentials{Type: TypeToken, Token: "cached-token"}

	config := Config{CacheTTL: 50 * time.Millisecond}
	provider, cleanup := seededProvider(t, testCreds, config)
	defer cleanup()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", creds.Token)

	time.Sleep(80 * time.Millisecond)

	provider.mu.RLock()
	expired := time.Now().After(provider.cacheExpiry)
	provider.mu.RUnlock()
	assert.True(t, expired, "cache should have expired")
}

func TestSecretProvider_RotateDropsCache(t *testing.T) {
	testCreds := &Credentials{Type: TypeToken, Token: "initial-token"}

	provider, cleanup := seededProvider(t, testCreds, DefaultConfig())
	defer cleanup()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "initial-token", creds.Token)

	// Rotation reloads from the keeper, which has no backing storage here.
	err = provider.Rotate(context.Background())
	assert.Error(t, err)
}

func TestSecretProvider_Close(t *testing.T) {
	testCreds := &Credentials{Type: TypeToken, Token: "close-token"}

	provider, cleanup := seededProvider(t, testCreds, DefaultConfig())
	defer cleanup()

	require.NoError(t, provider.Close())

	_, err := provider.GetCredentials(context.Background())
	assert.ErrorIs(t, err, ErrProviderClosed)

	assert.NoError(t, provider.Close())
}

func TestSecretProvider_ThreadSafety(t *testing.T) {
	testCreds := &Credentials{Type: TypeToken, Token: "concurrent-token"}

	provider, cleanup := seededProvider(t, testCreds, DefaultConfig())
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			creds, err := provider.GetCredentials(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-token", creds.Token)
		}()
	}
	wg.Wait()
}
