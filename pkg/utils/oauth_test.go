package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeTokenFile(t *testing.T, env string, token *oauth2.Token) {
	t.Helper()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir := filepath.Join(home, tokenDirName)
	require.NoError(t, os.MkdirAll(dir, tokenDirPerms))
	data, err := json.Marshal(token)
	require.NoError(t, err)
	path := filepath.Join(dir, "token."+env+".json")
	require.NoError(t, os.WriteFile(path, data, tokenFilePerms))
}

func TestLoadCachedToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	writeTokenFile(t, "test", &oauth2.Token{
		AccessToken: "still-good",
		Expiry:      time.Now().Add(time.Hour),
	})

	token, err := LoadCachedToken("test")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "still-good", token.AccessToken)
}

func TestLoadCachedToken_ExpiredToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	writeTokenFile(t, "test", &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	})

	// An expired token is no use without the flow, so callers get nothing.
	token, err := LoadCachedToken("test")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestLoadCachedToken_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	token, err := LoadCachedToken("test")
	require.NoError(t, err)
	assert.Nil(t, token)
}
