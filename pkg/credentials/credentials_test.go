package credentials

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	provider := NewStaticToken("test-token", 1*time.Hour)
	defer provider.Close()

	assert.Equal(t, TypeToken, provider.Type())

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeToken, creds.Type)
	assert.Equal(t, "test-token", creds.Token)
	assert.False(t, creds.IsExpired())
}

func TestStaticUserPassword(t *testing.T) {
	provider := NewStaticUserPassword("admin", "secret")
	defer provider.Close()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeUserPassword, creds.Type)
	assert.Equal(t, "admin", creds.User)
	assert.Equal(t, "secret", creds.Password)
}

func TestStatic_Expiration(t *testing.T) {
	provider := NewStaticToken("test-token", 1*time.Millisecond)
	defer provider.Close()

	time.Sleep(10 * time.Millisecond)

	_, err := provider.GetCredentials(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsExpired)
}

func TestStatic_Rotate(t *testing.T) {
	provider := NewStaticToken("test-token", 1*time.Hour)
	defer provider.Close()

	err := provider.Rotate(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rotation not supported")
}

func TestEnvToken(t *testing.T) {
	envKey := "COMMANDKIT_TEST_TOKEN_" + time.Now().Format("20060102150405")
	os.Setenv(envKey, "env-test-token")
	defer os.Unsetenv(envKey)

	provider := NewEnvToken(envKey, 5*time.Minute)
	defer provider.Close()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-test-token", creds.Token)
	require.NotNil(t, creds.ExpiresAt)
}

func TestEnvToken_Missing(t *testing.T) {
	provider := NewEnvToken("COMMANDKIT_TEST_DOES_NOT_EXIST", 0)
	defer provider.Close()

	_, err := provider.GetCredentials(context.Background())
	assert.Error(t, err)
}

func TestEnvUserPassword(t *testing.T) {
	userKey := "COMMANDKIT_TEST_USER_" + time.Now().Format("20060102150405")
	passKey := "COMMANDKIT_TEST_PASS_" + time.Now().Format("20060102150405")
	os.Setenv(userKey, "svc")
	os.Setenv(passKey, "pw")
	defer os.Unsetenv(userKey)
	defer os.Unsetenv(passKey)

	provider := NewEnvUserPassword(userKey, passKey)
	defer provider.Close()

	creds, err := provider.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "svc", creds.User)
	assert.Equal(t, "pw", creds.Password)
}

func TestChain_FallsThrough(t *testing.T) {
	failing := NewEnvToken("COMMANDKIT_TEST_DOES_NOT_EXIST", 0)
	working := NewStaticToken("chained-token", 0)

	chain := NewChain(failing, working)
	defer chain.Close()

	creds, err := chain.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chained-token", creds.Token)
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(
		NewEnvToken("COMMANDKIT_TEST_DOES_NOT_EXIST_1", 0),
		NewEnvToken("COMMANDKIT_TEST_DOES_NOT_EXIST_2", 0),
	)
	defer chain.Close()

	_, err := chain.GetCredentials(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestChain_Empty(t *testing.T) {
	chain := NewChain()
	_, err := chain.GetCredentials(context.Background())
	assert.Error(t, err)
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"valid token", Credentials{Type: TypeToken, Token: "t"}, false},
		{"empty token", Credentials{Type: TypeToken}, true},
		{"valid user/password", Credentials{Type: TypeUserPassword, User: "u", Password: "p"}, false},
		{"missing password", Credentials{Type: TypeUserPassword, User: "u"}, true},
		{"valid jwt", Credentials{Type: TypeJWT, JWT: "j"}, false},
		{"no type", Credentials{}, true},
		{"unknown type", Credentials{Type: "carrier-pigeon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentials_MarshalRedactsSecrets(t *testing.T) {
	creds := &Credentials{
		Type:     TypeUserPassword,
		User:     "admin",
		Password: "hunter2hunter2",
	}

	out, err := json.Marshal(creds)
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "hunter2hunter2")
	assert.Contains(t, text, "admin")
	assert.True(t, strings.Contains(text, "*"), "expected masked password in %s", text)
}

func TestSecretProvider_EmptyURL(t *testing.T) {
	_, err := NewSecretProvider(context.Background(), "")
	assert.Error(t, err)
}
