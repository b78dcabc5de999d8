// FILE: internal/service/email_service.go
package service

import (
	"context"
	"time"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/internal/repository/memory"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/fetchcache"
	"ai-mailassist-be/pkg/gmail"
	"ai-mailassist-be/pkg/oauth"
	"ai-mailassist-be/pkg/store"
)

type IEmailService interface {
	GetEmails(ctx context.Context, sessionId, mode string, count int) (*dto.GetEmailsResponse, error)
}

type emailService struct {
	sessions     *memory.SessionRepository
	oauthMgr     *oauth.Manager
	cache        *fetchcache.Cache
	cacheTTL     time.Duration
	gmailBaseURL string // "" means the real Gmail endpoint
}

func NewEmailService(
	sessions *memory.SessionRepository,
	oauthMgr *oauth.Manager,
	cache *fetchcache.Cache,
	cacheTTL time.Duration,
	gmailBaseURL string,
) IEmailService {
	return &emailService{
		sessions:     sessions,
		oauthMgr:     oauthMgr,
		cache:        cache,
		cacheTTL:     cacheTTL,
		gmailBaseURL: gmailBaseURL,
	}
}

func (s *emailService) GetEmails(ctx context.Context, sessionId, mode string, count int) (*dto.GetEmailsResponse, error) {
	if s.oauthMgr == nil {
		return nil, errs.New(errs.KindConfiguration, "gmail oauth is not configured")
	}

	session, found := s.sessions.Get(sessionId)
	if !found || !session.Authenticated() {
		return nil, errs.New(errs.KindReauthRequired, "gmail authorization required")
	}

	if docs, ok := s.cache.Get(mode, count); ok {
		return buildEmailsResponse(mode, count, true, docs), nil
	}

	cred := oauth.Deserialize(session.Credential)
	refreshed, err := s.oauthMgr.RefreshIfNeeded(ctx, cred)
	if err != nil {
		return nil, err
	}
	if refreshed != cred {
		// New access token; persist it so the next request skips the refresh.
		session.Credential = oauth.Serialize(refreshed)
		s.sessions.Save(session)
	}

	client := gmail.NewClient(s.oauthMgr.Client(ctx, refreshed), s.gmailBaseURL)
	docs, err := client.FetchEmails(ctx, mode, count)
	if err != nil {
		return nil, err
	}

	s.cache.Put(mode, count, docs, s.cacheTTL)
	return buildEmailsResponse(mode, count, false, docs), nil
}

func buildEmailsResponse(mode string, count int, cached bool, docs []store.Document) *dto.GetEmailsResponse {
	emails := make([]dto.EmailDTO, 0, len(docs))
	for _, doc := range docs {
		emails = append(emails, dto.EmailDTO{
			Subject: doc.Metadata[store.MetaSubject],
			From:    doc.Metadata[store.MetaFrom],
			Date:    doc.Metadata[store.MetaDate],
			Snippet: doc.Metadata[store.MetaSnippet],
			Body:    doc.Content,
		})
	}
	return &dto.GetEmailsResponse{
		Mode:   mode,
		Count:  count,
		Cached: cached,
		Emails: emails,
	}
}
