// FILE: pkg/oauth/manager.go
// PURPOSE: Credential lifecycle for the read-only Gmail grant: authorization
// URL issuance with single-use anti-CSRF state, code-for-token exchange, and
// lazy refresh. The manager never persists anything itself; callers keep the
// serialized record in their own session storage.

package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"ai-mailassist-be/pkg/errs"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GmailReadonlyScope is the only scope this service ever requests.
const GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

// statePendingTTL bounds how long an issued state token stays redeemable.
const statePendingTTL = 10 * time.Minute

type Manager struct {
	conf *oauth2.Config

	// pendingStates holds issued-but-unredeemed state tokens. A state is
	// deleted on the first callback decision, success or rejection, so a
	// replayed value is always rejected.
	pendingStates *cache.Cache
}

// NewManager validates the fixed configuration up front. Missing client
// secret material or a missing redirect URI abort the whole authorization
// flow here, before any user is sent to the consent screen.
func NewManager(clientID, clientSecret, redirectURL string) (*Manager, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errs.New(errs.KindConfiguration, "google client id/secret not configured")
	}
	if redirectURL == "" {
		return nil, errs.New(errs.KindConfiguration, "oauth redirect URL not configured")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	return &Manager{
		conf:          conf,
		pendingStates: cache.New(statePendingTTL, 2*statePendingTTL),
	}, nil
}

// BeginAuthorization issues a fresh single-use state token and the Google
// authorization URL bound to it. The caller must persist the state in its own
// session so the callback can present it as expectedState.
func (m *Manager) BeginAuthorization() (authURL string, state string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", errs.Wrap(errs.KindConfiguration, "unable to generate state token", err)
	}
	state = base64.URLEncoding.EncodeToString(b)

	m.pendingStates.Set(state, time.Now(), cache.DefaultExpiration)

	// access_type=offline + prompt=consent so Google returns a refresh token.
	authURL = m.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	return authURL, state, nil
}

// CompleteAuthorization validates the callback state against the expected one
// and exchanges the authorization code for a credential. The expected state
// is consumed on the first call, whatever the outcome; a second call with the
// same value fails with a CSRF error.
func (m *Manager) CompleteAuthorization(ctx context.Context, code, state, expectedState string) (*Credential, error) {
	if expectedState == "" {
		return nil, errs.New(errs.KindCSRF, "no pending authorization for this session")
	}

	if _, found := m.pendingStates.Get(expectedState); !found {
		return nil, errs.New(errs.KindCSRF, "state token already consumed or never issued")
	}
	m.pendingStates.Delete(expectedState)

	if state != expectedState {
		return nil, errs.New(errs.KindCSRF, "state mismatch on authorization callback")
	}

	token, err := m.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errs.Wrap(errs.KindExternalService, "code exchange failed", err)
	}

	return m.credentialFromToken(token), nil
}

// RefreshIfNeeded returns the credential unchanged while it is valid. An
// expired credential with a refresh token is exchanged for a fresh access
// token; the returned credential is a new value and the caller must
// re-persist its record. Expired without a refresh token means the user has
// to authenticate again.
//
// Two concurrent requests for the same session can both see the credential as
// expired and both refresh; the last re-persist wins. This is a known gap,
// acceptable because both refreshed tokens are usable.
func (m *Manager) RefreshIfNeeded(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.Valid() {
		return cred, nil
	}
	if cred.RefreshToken == "" {
		return nil, errs.New(errs.KindReauthRequired, "credential expired and no refresh token available")
	}

	// Rebuild the config from the credential itself: a deserialized record
	// carries its own token endpoint and client material.
	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Scopes:       cred.Scopes,
		Endpoint:     oauth2.Endpoint{TokenURL: cred.TokenURI},
	}
	if conf.ClientID == "" {
		conf.ClientID = m.conf.ClientID
		conf.ClientSecret = m.conf.ClientSecret
	}
	if conf.Endpoint.TokenURL == "" {
		conf.Endpoint = m.conf.Endpoint
	}

	token, err := conf.TokenSource(ctx, cred.oauth2Token()).Token()
	if err != nil {
		return nil, errs.Wrap(errs.KindExternalService, "token refresh failed", err)
	}

	refreshed := m.credentialFromToken(token)
	refreshed.TokenURI = conf.Endpoint.TokenURL
	refreshed.ClientID = conf.ClientID
	refreshed.ClientSecret = conf.ClientSecret
	refreshed.Scopes = cred.Scopes
	if refreshed.RefreshToken == "" {
		// Google omits the refresh token on refresh responses; keep the old one.
		refreshed.RefreshToken = cred.RefreshToken
	}
	return refreshed, nil
}

// Client returns an http client that attaches the credential's bearer token
// to every request. It does NOT refresh; callers run RefreshIfNeeded first so
// the refreshed record can be re-persisted.
func (m *Manager) Client(ctx context.Context, cred *Credential) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(cred.oauth2Token()))
}

func (m *Manager) credentialFromToken(token *oauth2.Token) *Credential {
	return &Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     m.conf.Endpoint.TokenURL,
		ClientID:     m.conf.ClientID,
		ClientSecret: m.conf.ClientSecret,
		Scopes:       m.conf.Scopes,
		Expiry:       token.Expiry,
	}
}
