package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/ispadmin/internal/auth"
	"github.com/iudanet/ispadmin/internal/server/storage/sqlite"
)

// testIterations - низкое количество итераций KDF для быстрых тестов
const testIterations = 4096

// fakeSender запоминает отправленные коды вместо реальной доставки
type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendResetMessage(_ context.Context, _, token string) error {
	f.sent = append(f.sent, token)
	return nil
}

// testEnv собирает все зависимости handlers поверх in-memory БД
type testEnv struct {
	storage   *sqlite.Storage
	hasher    *auth.Hasher
	throttle  *auth.Throttle
	tokens    *auth.TokenService
	sender    *fakeSender
	auth      *AuthHandler
	reset     *ResetHandler
	customers *CustomerHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	hasher := auth.NewHasher([]byte("handler-test-salt-32-bytes-long!"), testIterations)
	policy := auth.NewPolicy(auth.DefaultPolicyConfig(), hasher, s)
	throttle := auth.NewThrottle(logger, s, s, auth.DefaultThrottleConfig())
	tokens := auth.NewTokenService([]byte("handler-test-signing-key"), auth.DefaultTokenTTL)
	sender := &fakeSender{}
	resets := auth.NewResetService(logger, s, s, sender, auth.DefaultResetTokenTTL)

	return &testEnv{
		storage:   s,
		hasher:    hasher,
		throttle:  throttle,
		tokens:    tokens,
		sender:    sender,
		auth:      NewAuthHandler(logger, s, s, hasher, policy, throttle, tokens),
		reset:     NewResetHandler(logger, s, s, hasher, policy, throttle, resets),
		customers: NewCustomerHandler(logger, s),
	}
}

// doJSON выполняет запрос с JSON телом против handler
func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// doAuthed выполняет запрос от имени аутентифицированного пользователя
// Identity кладется в контекст напрямую, как это делает AuthMiddleware
func doAuthed(t *testing.T, handler http.HandlerFunc, method, target, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// decodeBody парсит JSON тело ответа в out
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(out))
}

// registerAccount регистрирует учетную запись через handler и возвращает user_id
func registerAccount(t *testing.T, env *testEnv, username, email, password string) string {
	t.Helper()

	w := doJSON(t, env.auth.Register, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		UserID string `json:"user_id"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.UserID)

	return resp.UserID
}
