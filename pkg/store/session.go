package store

import "ai-mailassist-be/pkg/oauth"

// Document is the unit of retrieved content flowing through the RAG pipeline.
// It is immutable after retrieval; identity is structural (content+metadata).
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Metadata keys. Source is required; the rest are optional.
const (
	MetaSource  = "source"
	MetaPage    = "page"
	MetaSnippet = "snippet"
	MetaSubject = "subject"
	MetaFrom    = "from"
	MetaDate    = "date"
)

// Source returns the source id this document was retrieved from, or "" when
// the metadata is missing it.
func (d Document) Source() string {
	return d.Metadata[MetaSource]
}

// Session is the server-side web session record: the pending OAuth state
// token during an authorization flow and the credential record once the flow
// completed. The chat transcript itself lives in the conversation store, not
// here.
type Session struct {
	ID         string                  `json:"id"`
	OAuthState string                  `json:"oauth_state,omitempty"`
	Credential *oauth.CredentialRecord `json:"credential,omitempty"`
}

// Authenticated reports whether the session holds a credential record.
func (s *Session) Authenticated() bool {
	return s != nil && s.Credential != nil
}
