package gmailclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/gurdwarasoft/seva-scheduler/internal/config"
)

func testOAuthClientConfig() *config.OAuthClientConfig {
	return &config.OAuthClientConfig{
		Installed: config.OAuthInstalled{
			ClientID:                "client-id.apps.googleusercontent.com",
			ProjectID:               "seva-scheduler-test",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "client-secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestNewClientWithToken(t *testing.T) {
	// Constructing from an existing token must not touch the network or
	// prompt for authorization.
	token := &oauth2.Token{
		AccessToken: "cached",
		Expiry:      time.Now().Add(time.Hour),
	}

	client, err := NewClientWithToken(context.Background(), testOAuthClientConfig(), token, "sender@example.org")
	require.NoError(t, err)
	require.NotNil(t, client)
	require.Equal(t, "sender@example.org", client.sender)
}
