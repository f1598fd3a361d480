package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/handler"
	"go-gin-meetup/internal/mocks/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	InvalidJSON = `{"invalid": json}`

	testTokens = auth.NewTokenIssuer("test-secret", time.Hour)

	// 測試時不希望被限流
	relaxedLimits = &handler.RateLimits{
		GlobalRequests: 10000,
		GlobalWindow:   time.Minute,
		AuthRequests:   10000,
		AuthWindow:     time.Minute,
	}
)

type testServer struct {
	router        *gin.Engine
	events        *services.EventServiceMock
	auth          *services.AuthServiceMock
	notifications *services.NotificationServiceMock
}

func setupTestRouter() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		events:        services.NewEventServiceMock(),
		auth:          services.NewAuthServiceMock(),
		notifications: services.NewNotificationServiceMock(),
	}
	s.router = handler.NewRouter(handler.RouterConfig{
		AllowedOrigin: "*",
		Tokens:        testTokens,
		Events:        s.events,
		Auth:          s.auth,
		Notifications: s.notifications,
		RateLimits:    relaxedLimits,
	})
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	if raw, ok := data.(string); ok {
		return bytes.NewBufferString(raw)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	var body *bytes.Buffer
	if data == nil {
		body = bytes.NewBuffer(nil)
	} else {
		body = createJSONRequest(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authed 帶上 userID 的 Bearer token
func authed(t *testing.T, req *http.Request, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := testTokens.Issue(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
