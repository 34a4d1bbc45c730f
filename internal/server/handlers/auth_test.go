package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ispadmin/pkg/api"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	userID := registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")
	assert.NotEmpty(t, userID)

	// Повторный username
	w := doJSON(t, env.auth.Register, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Str0ng!Pass1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "username already taken")

	// Повторный email
	w = doJSON(t, env.auth.Register, http.MethodPost, "/api/register", map[string]string{
		"username": "bob",
		"email":    "alice@example.com",
		"password": "Str0ng!Pass1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
		errMsg  string
	}{
		{
			name:    "invalid username",
			payload: map[string]string{"username": "a!", "email": "a@example.com", "password": "Str0ng!Pass1"},
			errMsg:  "username",
		},
		{
			name:    "invalid email",
			payload: map[string]string{"username": "alice", "email": "not-an-email", "password": "Str0ng!Pass1"},
			errMsg:  "email",
		},
		{
			name:    "weak password",
			payload: map[string]string{"username": "alice", "email": "a@example.com", "password": "short"},
			errMsg:  "at least 10 characters",
		},
		{
			name:    "common password",
			payload: map[string]string{"username": "alice", "email": "a@example.com", "password": "Welcome123!"},
			errMsg:  "too common",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, env.auth.Register, http.MethodPost, "/api/register", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.errMsg)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	userID := registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")

	w := doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "Str0ng!Pass1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.TokenResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Выданный токен проходит проверку и содержит identity
	claims, err := env.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")

	// Неизвестный username и неверный пароль дают одинаковый ответ
	w := doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "nobody",
		"password": "Str0ng!Pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")

	w = doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "Wrong!Pass999",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLogin_AccountLockout(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")

	login := func(password string) *httptest.ResponseRecorder {
		return doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
			"username": "alice",
			"password": password,
		})
	}

	// Две неудачи: еще не заблокировано
	for i := 0; i < 2; i++ {
		w := login("Wrong!Pass999")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Третья неудача достигает порога
	w := login("Wrong!Pass999")
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "Account is locked")

	// Правильный пароль не помогает, пока блокировка не истекла
	w = login("Str0ng!Pass1")
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestLogin_SourceLockout(t *testing.T) {
	env := newTestEnv(t)

	// 10 неудач с одного адреса по несуществующим учетным записям
	for i := 0; i < 10; i++ {
		w := doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
			"username": fmt.Sprintf("ghost%d", i),
			"password": "Wrong!Pass999",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "ghost99",
		"password": "Wrong!Pass999",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many login attempts")
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	userID := registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")

	// Неверный текущий пароль
	w := doAuthed(t, env.auth.ChangePassword, http.MethodPost, "/api/change-password", userID, api.ChangePasswordRequest{
		CurrentPassword: "Wrong!Pass999",
		NewPassword:     "N3w!Password7",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "current password is incorrect")

	// Переиспользование текущего пароля отклоняется историей
	w = doAuthed(t, env.auth.ChangePassword, http.MethodPost, "/api/change-password", userID, api.ChangePasswordRequest{
		CurrentPassword: "Str0ng!Pass1",
		NewPassword:     "Str0ng!Pass1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot reuse")

	// Успешная смена
	w = doAuthed(t, env.auth.ChangePassword, http.MethodPost, "/api/change-password", userID, api.ChangePasswordRequest{
		CurrentPassword: "Str0ng!Pass1",
		NewPassword:     "N3w!Password7",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Старый пароль больше не действует, новый работает
	w = doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "Str0ng!Pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.auth.Login, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "N3w!Password7",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePassword_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.auth.ChangePassword, http.MethodPost, "/api/change-password", api.ChangePasswordRequest{
		CurrentPassword: "Str0ng!Pass1",
		NewPassword:     "N3w!Password7",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	userID := registerAccount(t, env, "alice", "alice@example.com", "Str0ng!Pass1")

	w := doAuthed(t, env.auth.Me, http.MethodGet, "/api/me", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.NotEmpty(t, resp.CreatedAt)

	// Пароль и hash не попадают в ответ
	assert.NotContains(t, w.Body.String(), "password")
}
