package dto

type GmailLoginResponse struct {
	AuthURL string `json:"auth_url"`
}

type GmailStatusResponse struct {
	Authenticated bool     `json:"authenticated"`
	Scopes        []string `json:"scopes,omitempty"`
}
