// FILE: pkg/gmail/client.go
// PURPOSE: Minimal Gmail REST client for reading inbox messages. The
// *http.Client is injected already carrying OAuth credentials.

package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/store"
)

const defaultBaseURL = "https://gmail.googleapis.com"

// Fetch modes accepted by FetchEmails.
const (
	ModeRecent = "recent"
	ModeWeekly = "weekly"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient wraps an OAuth-bearing http client. baseURL is overridable for
// tests; empty means the real Gmail endpoint.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type messageList struct {
	Messages []struct {
		Id string `json:"id"`
	} `json:"messages"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Body     struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

type message struct {
	Id      string `json:"id"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		messagePart
	} `json:"payload"`
	Snippet string `json:"snippet"`
}

// FetchEmails lists inbox messages for the given mode and hydrates each into
// a Document. ModeRecent takes the newest count messages; ModeWeekly takes
// everything from the last seven days. Individual messages that fail to
// hydrate are skipped rather than failing the whole fetch.
func (c *Client) FetchEmails(ctx context.Context, mode string, count int) ([]store.Document, error) {
	query := "in:inbox"
	maxResults := count
	switch mode {
	case ModeRecent:
	case ModeWeekly:
		cutoff := time.Now().AddDate(0, 0, -7)
		query = fmt.Sprintf("in:inbox after:%s", cutoff.Format("2006/01/02"))
		maxResults = 100
	default:
		return nil, errs.New(errs.KindConfiguration, fmt.Sprintf("unknown fetch mode %q", mode))
	}

	ids, err := c.listMessageIDs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.fetchMessage(ctx, id)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Client) listMessageIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	u := fmt.Sprintf("%s/gmail/v1/users/me/messages?q=%s&maxResults=%d",
		c.baseURL, url.QueryEscape(query), maxResults)

	var list messageList
	if err := c.getJSON(ctx, u, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (c *Client) fetchMessage(ctx context.Context, id string) (store.Document, error) {
	u := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?format=full", c.baseURL, url.PathEscape(id))

	var msg message
	if err := c.getJSON(ctx, u, &msg); err != nil {
		return store.Document{}, err
	}

	meta := map[string]string{
		store.MetaSource:  "email:" + msg.Id,
		store.MetaSnippet: msg.Snippet,
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			meta[store.MetaSubject] = h.Value
		case "From":
			meta[store.MetaFrom] = h.Value
		case "Date":
			meta[store.MetaDate] = h.Value
		}
	}

	body := extractBody(msg.Payload.messagePart)
	if body == "" {
		body = msg.Snippet
	}

	content := fmt.Sprintf("Subject: %s\nFrom: %s\nDate: %s\n\n%s",
		meta[store.MetaSubject], meta[store.MetaFrom], meta[store.MetaDate], body)

	return store.Document{Content: content, Metadata: meta}, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errs.Wrap(errs.KindExternalService, "building gmail request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindExternalService, "gmail request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errs.New(errs.KindReauthRequired, fmt.Sprintf("gmail rejected credentials (status %d)", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindExternalService, fmt.Sprintf("gmail returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.KindExternalService, "decoding gmail response", err)
	}
	return nil
}

// extractBody walks the MIME tree preferring text/plain parts; if only HTML
// is present the tags are stripped naively.
func extractBody(part messagePart) string {
	if plain := findPart(part, "text/plain"); plain != "" {
		return plain
	}
	if html := findPart(part, "text/html"); html != "" {
		return stripHTML(html)
	}
	return ""
}

func findPart(part messagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	for _, child := range part.Parts {
		if found := findPart(child, mimeType); found != "" {
			return found
		}
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return strings.Join(strings.Fields(s), " ")
}
