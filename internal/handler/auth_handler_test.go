package handler_test

import (
	"net/http"
	"testing"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegister(t *testing.T) {
	body := map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret1",
		"city":     "Taipei",
	}

	t.Run("Success", func(t *testing.T) {
		s := setupTestRouter()
		user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
		s.auth.On("Register", mock.Anything, service.RegisterParams{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "secret1",
			City:     "Taipei",
		}).Return(&model.AuthResponse{Token: "token", User: user}, nil).Once()

		w := s.do(createJSONHTTPRequest("POST", "/api/auth/register", body))

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "token", resp["token"])
		assert.NotContains(t, resp["user"], "password_hash")
		s.auth.AssertExpectations(t)
	})

	t.Run("Failed - ErrEmailTaken", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailTaken).Once()

		w := s.do(createJSONHTTPRequest("POST", "/api/auth/register", body))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "email_taken", decodeBody(t, w)["code"])
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		s := setupTestRouter()

		w := s.do(createJSONHTTPRequest("POST", "/api/auth/register", InvalidJSON))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.auth.AssertNotCalled(t, "Register")
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Login", mock.Anything, service.LoginParams{Email: "alice@example.com", Password: "secret1"}).
			Return(&model.AuthResponse{Token: "token", User: &model.User{ID: uuid.New()}}, nil).Once()

		w := s.do(createJSONHTTPRequest("POST", "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "secret1",
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		s.auth.AssertExpectations(t)
	})

	t.Run("Failed - ErrInvalidCredentials", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Login", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInvalidCredentials).Once()

		w := s.do(createJSONHTTPRequest("POST", "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", decodeBody(t, w)["code"])
	})
}

func TestMe(t *testing.T) {
	callerID := uuid.New()

	t.Run("Success - bearer token", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Me", mock.Anything, callerID).Return(&model.User{ID: callerID, Name: "Alice"}, nil).Once()

		w := s.do(authed(t, createJSONHTTPRequest("GET", "/api/auth/me", nil), callerID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice", decodeBody(t, w)["name"])
	})

	t.Run("Success - legacy header", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Me", mock.Anything, callerID).Return(&model.User{ID: callerID}, nil).Once()
		token, err := testTokens.Issue(callerID)
		assert.NoError(t, err)

		req := createJSONHTTPRequest("GET", "/api/auth/me", nil)
		req.Header.Set("x-auth-token", token)
		w := s.do(req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - bad token", func(t *testing.T) {
		s := setupTestRouter()

		req := createJSONHTTPRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := s.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		s.auth.AssertNotCalled(t, "Me")
	})

	t.Run("Failed - ErrUserNotFound", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("Me", mock.Anything, callerID).Return(nil, apperrors.ErrUserNotFound).Once()

		w := s.do(authed(t, createJSONHTTPRequest("GET", "/api/auth/me", nil), callerID))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	callerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("UpdateProfile", mock.Anything, callerID, mock.MatchedBy(func(p service.UpdateProfileParams) bool {
			return p.Name == nil && p.City != nil && *p.City == "Tainan" &&
				p.Hobbies != nil && len(*p.Hobbies) == 2
		})).Return(&model.User{ID: callerID, City: "Tainan"}, nil).Once()

		w := s.do(authed(t, createJSONHTTPRequest("PATCH", "/api/auth/profile",
			`{"city":"Tainan","hobbies":["hiking","chess"]}`), callerID))

		assert.Equal(t, http.StatusOK, w.Code)
		s.auth.AssertExpectations(t)
	})

	t.Run("Failed - ErrInvalidInput", func(t *testing.T) {
		s := setupTestRouter()
		s.auth.On("UpdateProfile", mock.Anything, callerID, mock.Anything).Return(nil, apperrors.ErrInvalidInput).Once()

		w := s.do(authed(t, createJSONHTTPRequest("PATCH", "/api/auth/profile", `{"name":""}`), callerID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
