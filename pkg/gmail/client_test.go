// FILE: pkg/gmail/client_test.go

package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/store"
)

func b64(s string) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(s))
}

// newGmailStub serves a two-message inbox with one plain-text and one
// HTML-only message.
func newGmailStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"id":"m1"},{"id":"m2"}]}`)
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		fmt.Fprintf(w, `{
			"id": "m1",
			"snippet": "Lunch on Friday?",
			"payload": {
				"headers": [
					{"name": "Subject", "value": "Team lunch"},
					{"name": "From", "value": "ana@example.com"},
					{"name": "Date", "value": "Mon, 24 Aug 2026 10:00:00 +0000"}
				],
				"mimeType": "text/plain",
				"body": {"data": "%s"}
			}
		}`, b64("Lunch on Friday at noon?"))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/m2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": "m2",
			"snippet": "Invoice attached",
			"payload": {
				"headers": [{"name": "Subject", "value": "Invoice #42"}],
				"mimeType": "multipart/alternative",
				"body": {"data": ""},
				"parts": [
					{"mimeType": "text/html", "body": {"data": "%s"}}
				]
			}
		}`, b64("<p>Your invoice is <b>attached</b>.</p>"))
	})

	return httptest.NewServer(mux)
}

func TestFetchEmailsRecent(t *testing.T) {
	srv := newGmailStub(t)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	docs, err := client.FetchEmails(context.Background(), ModeRecent, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "email:m1", docs[0].Source())
	assert.Equal(t, "Team lunch", docs[0].Metadata[store.MetaSubject])
	assert.Equal(t, "ana@example.com", docs[0].Metadata[store.MetaFrom])
	assert.Contains(t, docs[0].Content, "Lunch on Friday at noon?")

	// HTML body is stripped to text
	assert.Contains(t, docs[1].Content, "Your invoice is attached")
	assert.NotContains(t, docs[1].Content, "<p>")
}

func TestFetchEmailsWeeklyQuery(t *testing.T) {
	var capturedQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") {
			capturedQuery = r.URL.Query().Get("q")
			fmt.Fprint(w, `{"messages":[]}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	docs, err := client.FetchEmails(context.Background(), ModeWeekly, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Contains(t, capturedQuery, "in:inbox after:")
}

func TestFetchEmailsUnknownMode(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://unused.invalid")
	_, err := client.FetchEmails(context.Background(), "hourly", 10)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))
}

func TestFetchEmailsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	_, err := client.FetchEmails(context.Background(), ModeRecent, 10)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindReauthRequired))
}

func TestFetchEmailsSkipsBrokenMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"id":"ok"},{"id":"broken"}]}`)
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"ok","snippet":"hi","payload":{"headers":[],"mimeType":"text/plain","body":{"data":"%s"}}}`, b64("hello"))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	docs, err := client.FetchEmails(context.Background(), ModeRecent, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "email:ok", docs[0].Source())
}
