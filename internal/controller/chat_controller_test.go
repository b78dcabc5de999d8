// FILE: internal/controller/chat_controller_test.go
package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/internal/dto"
	"ai-mailassist-be/internal/pkg/serverutils"
	"ai-mailassist-be/pkg/errs"
)

type stubChatService struct {
	response *dto.SendChatResponse
	err      error
}

func (s *stubChatService) SendChat(ctx context.Context, sessionId string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubChatService) GetHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error) {
	return &dto.GetChatHistoryResponse{SessionId: sessionId, Messages: []dto.ChatMessageDTO{}}, nil
}

func newChatTestApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Use(serverutils.SessionMiddleware)
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func TestSendChatEndpoint(t *testing.T) {
	app := newChatTestApp(&stubChatService{
		response: &dto.SendChatResponse{Answer: "42", Sources: []string{"guide.pdf"}},
	})

	req := httptest.NewRequest("POST", "/api/chat/v1/", strings.NewReader(`{"question":"what is the answer?"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body serverutils.BaseResponse[dto.SendChatResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "42", body.Data.Answer)
	assert.Equal(t, []string{"guide.pdf"}, body.Data.Sources)

	// a session cookie is issued to new visitors
	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], serverutils.SessionCookieName+"=")
}

func TestSendChatValidation(t *testing.T) {
	app := newChatTestApp(&stubChatService{})

	req := httptest.NewRequest("POST", "/api/chat/v1/", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSendChatErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"reauth", errs.New(errs.KindReauthRequired, "credentials expired"), 401},
		{"upstream", errs.New(errs.KindExternalService, "model down"), 502},
		{"csrf", errs.New(errs.KindCSRF, "bad state"), 400},
		{"config", errs.New(errs.KindConfiguration, "missing key"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newChatTestApp(&stubChatService{err: tc.err})

			req := httptest.NewRequest("POST", "/api/chat/v1/", strings.NewReader(`{"question":"hello"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
