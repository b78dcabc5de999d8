// FILE: internal/service/gmail_auth_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/internal/repository/memory"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/oauth"
	"ai-mailassist-be/pkg/store"
)

func newAuthService(t *testing.T) (IGmailAuthService, *memory.SessionRepository) {
	t.Helper()
	sessions := memory.NewSessionRepository()
	mgr, err := oauth.NewManager("client-id", "client-secret", "http://localhost/cb")
	require.NoError(t, err)
	return NewGmailAuthService(sessions, mgr), sessions
}

func TestLoginStoresPendingState(t *testing.T) {
	svc, sessions := newAuthService(t)

	res, err := svc.Login(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, res.AuthURL, "accounts.google.com")

	session, found := sessions.Get("s1")
	require.True(t, found)
	assert.NotEmpty(t, session.OAuthState)
	assert.Contains(t, res.AuthURL, "state=")
}

func TestLoginReplacesPreviousFlow(t *testing.T) {
	svc, sessions := newAuthService(t)

	_, err := svc.Login(context.Background(), "s1")
	require.NoError(t, err)
	first, _ := sessions.Get("s1")
	firstState := first.OAuthState

	_, err = svc.Login(context.Background(), "s1")
	require.NoError(t, err)
	second, _ := sessions.Get("s1")

	assert.NotEqual(t, firstState, second.OAuthState, "restarting the flow must mint a fresh state")
}

// The container wires a nil manager when the OAuth env is missing; the auth
// surface must answer with a configuration error, not crash.
func TestLoginWithoutOAuthConfig(t *testing.T) {
	svc := NewGmailAuthService(memory.NewSessionRepository(), nil)

	_, err := svc.Login(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))

	err = svc.Callback(context.Background(), "s1", "code", "state")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))
}

func TestCallbackWithoutFlowIsCSRF(t *testing.T) {
	svc, _ := newAuthService(t)

	err := svc.Callback(context.Background(), "s1", "code", "some-state")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCSRF))
}

func TestCallbackStateMismatchIsCSRF(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "s1")
	require.NoError(t, err)

	err = svc.Callback(context.Background(), "s1", "code", "attacker-forged")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCSRF))
}

func TestStatusAndLogout(t *testing.T) {
	svc, sessions := newAuthService(t)

	// unauthenticated by default
	status := svc.Status(context.Background(), "s1")
	assert.False(t, status.Authenticated)

	sessions.Save(&store.Session{
		ID: "s1",
		Credential: &oauth.CredentialRecord{
			Token:  "tok",
			Scopes: []string{oauth.GmailReadonlyScope},
		},
	})

	status = svc.Status(context.Background(), "s1")
	assert.True(t, status.Authenticated)
	assert.Equal(t, []string{oauth.GmailReadonlyScope}, status.Scopes)

	svc.Logout(context.Background(), "s1")
	status = svc.Status(context.Background(), "s1")
	assert.False(t, status.Authenticated)
}
