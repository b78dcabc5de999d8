// FILE: internal/service/gmail_auth_service.go
package service

import (
	"context"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/internal/repository/memory"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/oauth"
	"ai-mailassist-be/pkg/store"
)

type IGmailAuthService interface {
	Login(ctx context.Context, sessionId string) (*dto.GmailLoginResponse, error)
	Callback(ctx context.Context, sessionId, code, state string) error
	Status(ctx context.Context, sessionId string) *dto.GmailStatusResponse
	Logout(ctx context.Context, sessionId string)
}

type gmailAuthService struct {
	sessions *memory.SessionRepository
	oauthMgr *oauth.Manager
}

func NewGmailAuthService(sessions *memory.SessionRepository, oauthMgr *oauth.Manager) IGmailAuthService {
	return &gmailAuthService{
		sessions: sessions,
		oauthMgr: oauthMgr,
	}
}

// Login starts a fresh authorization flow. Starting a new flow invalidates
// any state token from a previous unfinished one for this session.
func (s *gmailAuthService) Login(ctx context.Context, sessionId string) (*dto.GmailLoginResponse, error) {
	if s.oauthMgr == nil {
		return nil, errs.New(errs.KindConfiguration, "gmail oauth is not configured")
	}

	authURL, state, err := s.oauthMgr.BeginAuthorization()
	if err != nil {
		return nil, err
	}

	session, found := s.sessions.Get(sessionId)
	if !found {
		session = &store.Session{ID: sessionId}
	}
	session.OAuthState = state
	s.sessions.Save(session)

	return &dto.GmailLoginResponse{AuthURL: authURL}, nil
}

// Callback finishes the flow: state is checked against both the session's
// pending value and the single-use registry, then the code is exchanged and
// the credential persisted on the session.
func (s *gmailAuthService) Callback(ctx context.Context, sessionId, code, state string) error {
	if s.oauthMgr == nil {
		return errs.New(errs.KindConfiguration, "gmail oauth is not configured")
	}

	session, found := s.sessions.Get(sessionId)
	if !found || session.OAuthState == "" {
		return errs.New(errs.KindCSRF, "no authorization flow in progress for this session")
	}

	cred, err := s.oauthMgr.CompleteAuthorization(ctx, code, state, session.OAuthState)
	if err != nil {
		return err
	}

	session.OAuthState = ""
	session.Credential = oauth.Serialize(cred)
	s.sessions.Save(session)
	return nil
}

func (s *gmailAuthService) Status(ctx context.Context, sessionId string) *dto.GmailStatusResponse {
	session, found := s.sessions.Get(sessionId)
	if !found || !session.Authenticated() {
		return &dto.GmailStatusResponse{Authenticated: false}
	}
	return &dto.GmailStatusResponse{
		Authenticated: true,
		Scopes:        session.Credential.Scopes,
	}
}

func (s *gmailAuthService) Logout(ctx context.Context, sessionId string) {
	s.sessions.Delete(sessionId)
}
