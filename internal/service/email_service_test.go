// FILE: internal/service/email_service_test.go
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/internal/repository/memory"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/fetchcache"
	"ai-mailassist-be/pkg/oauth"
	"ai-mailassist-be/pkg/store"
)

// newGmailStub counts list calls so tests can assert the cache short-circuits
// the upstream fetch.
func newGmailStub(t *testing.T, listCalls *atomic.Int64) *httptest.Server {
	t.Helper()
	body := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("hello there"))

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		fmt.Fprint(w, `{"messages":[{"id":"m1"}]}`)
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"m1","snippet":"hi","payload":{"headers":[{"name":"Subject","value":"Greetings"}],"mimeType":"text/plain","body":{"data":"%s"}}}`, body)
	})
	return httptest.NewServer(mux)
}

func newAuthenticatedSessions(t *testing.T, sessionId string) *memory.SessionRepository {
	t.Helper()
	sessions := memory.NewSessionRepository()
	sessions.Save(&store.Session{
		ID: sessionId,
		Credential: &oauth.CredentialRecord{
			Token:        "access-token",
			RefreshToken: "refresh-token",
			TokenURI:     "https://oauth2.googleapis.com/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{oauth.GmailReadonlyScope},
		},
	})
	return sessions
}

func newTestOAuthManager(t *testing.T) *oauth.Manager {
	t.Helper()
	mgr, err := oauth.NewManager("client-id", "client-secret", "http://localhost/cb")
	require.NoError(t, err)
	return mgr
}

func TestGetEmailsRequiresAuth(t *testing.T) {
	svc := NewEmailService(
		memory.NewSessionRepository(),
		newTestOAuthManager(t),
		fetchcache.New(time.Minute),
		time.Minute,
		"http://unused.invalid",
	)

	_, err := svc.GetEmails(context.Background(), "anon", "recent", 10)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindReauthRequired))
}

func TestGetEmailsWithoutOAuthConfig(t *testing.T) {
	svc := NewEmailService(
		newAuthenticatedSessions(t, "s1"),
		nil,
		fetchcache.New(time.Minute),
		time.Minute,
		"http://unused.invalid",
	)

	_, err := svc.GetEmails(context.Background(), "s1", "recent", 10)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))
}

func TestGetEmailsFetchThenCache(t *testing.T) {
	var listCalls atomic.Int64
	srv := newGmailStub(t, &listCalls)
	defer srv.Close()

	svc := NewEmailService(
		newAuthenticatedSessions(t, "s1"),
		newTestOAuthManager(t),
		fetchcache.New(time.Minute),
		time.Minute,
		srv.URL,
	)

	res, err := svc.GetEmails(context.Background(), "s1", "recent", 10)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	require.Len(t, res.Emails, 1)
	assert.Equal(t, "Greetings", res.Emails[0].Subject)
	assert.Equal(t, int64(1), listCalls.Load())

	// second identical request is served from the cache
	res, err = svc.GetEmails(context.Background(), "s1", "recent", 10)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, int64(1), listCalls.Load())
}

func TestGetEmailsDistinctParamsRefetch(t *testing.T) {
	var listCalls atomic.Int64
	srv := newGmailStub(t, &listCalls)
	defer srv.Close()

	svc := NewEmailService(
		newAuthenticatedSessions(t, "s1"),
		newTestOAuthManager(t),
		fetchcache.New(time.Minute),
		time.Minute,
		srv.URL,
	)

	_, err := svc.GetEmails(context.Background(), "s1", "recent", 10)
	require.NoError(t, err)
	_, err = svc.GetEmails(context.Background(), "s1", "recent", 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), listCalls.Load(), "different count must bypass the cache")
}

func TestGetEmailsExpiredTTLRefetches(t *testing.T) {
	var listCalls atomic.Int64
	srv := newGmailStub(t, &listCalls)
	defer srv.Close()

	svc := NewEmailService(
		newAuthenticatedSessions(t, "s1"),
		newTestOAuthManager(t),
		fetchcache.New(time.Minute),
		20*time.Millisecond,
		srv.URL,
	)

	_, err := svc.GetEmails(context.Background(), "s1", "weekly", 5)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	res, err := svc.GetEmails(context.Background(), "s1", "weekly", 5)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, int64(2), listCalls.Load())
}
