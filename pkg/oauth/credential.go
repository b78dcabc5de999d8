// FILE: pkg/oauth/credential.go
package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the bearer token plus refresh material needed to call a
// protected API on the user's behalf. One instance belongs to one caller
// (typically a web session); it is never shared process-wide.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Expiry       time.Time
}

// CredentialRecord is the storage-neutral shape a Credential round-trips
// through an opaque session store. Field names are stable across versions so
// old sessions keep deserializing.
type CredentialRecord struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// Expired reports whether the access token's lifetime has elapsed. A zero
// expiry (e.g. after a deserialize, where the record carries no expiry) is
// treated as not expired; the protected API will reject a stale token and the
// caller re-authenticates then.
func (c *Credential) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

// Valid reports whether the credential can be used as-is.
func (c *Credential) Valid() bool {
	return c.AccessToken != "" && !c.Expired()
}

func (c *Credential) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
		TokenType:    "Bearer",
	}
}

// Serialize maps the credential to its storage record. Pure, no side effects.
func Serialize(c *Credential) *CredentialRecord {
	return &CredentialRecord{
		Token:        c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenURI:     c.TokenURI,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
	}
}

// Deserialize rebuilds a Credential from a stored record. Callers normally
// follow up with Manager.RefreshIfNeeded and re-persist the result.
func Deserialize(r *CredentialRecord) *Credential {
	return &Credential{
		AccessToken:  r.Token,
		RefreshToken: r.RefreshToken,
		TokenURI:     r.TokenURI,
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
		Scopes:       r.Scopes,
	}
}
