package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/ispadmin/internal/auth"
	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
	"github.com/iudanet/ispadmin/internal/validation"
	"github.com/iudanet/ispadmin/pkg/api"
)

// AuthHandler обрабатывает запросы регистрации и аутентификации
type AuthHandler struct {
	logger   *slog.Logger
	accounts storage.AccountStorage
	history  storage.HistoryStorage
	hasher   *auth.Hasher
	policy   *auth.Policy
	throttle *auth.Throttle
	tokens   *auth.TokenService
}

// NewAuthHandler создает новый handler для аутентификации
func NewAuthHandler(
	logger *slog.Logger,
	accounts storage.AccountStorage,
	history storage.HistoryStorage,
	hasher *auth.Hasher,
	policy *auth.Policy,
	throttle *auth.Throttle,
	tokens *auth.TokenService,
) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		accounts: accounts,
		history:  history,
		hasher:   hasher,
		policy:   policy,
		throttle: throttle,
		tokens:   tokens,
	}
}

// Register обрабатывает POST /api/register
// Регистрация новой учетной записи
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.logger.WarnContext(ctx, "invalid email", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	// Новая учетная запись - истории паролей еще нет
	if err := h.policy.Validate(ctx, req.Password, ""); err != nil {
		h.logger.WarnContext(ctx, "password rejected by policy", slog.String("username", req.Username))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: h.hasher.Hash(req.Password),
		CreatedAt:    time.Now(),
	}

	if err := h.accounts.CreateAccount(ctx, account); err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountExists):
			h.logger.WarnContext(ctx, "username already taken", slog.String("username", req.Username))
			sendError(h.logger, w, "username already taken", http.StatusConflict)
		case errors.Is(err, storage.ErrEmailExists):
			h.logger.WarnContext(ctx, "email already registered", slog.String("username", req.Username))
			sendError(h.logger, w, "email already registered", http.StatusConflict)
		default:
			h.logger.ErrorContext(ctx, "failed to create account", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.recordPasswordHistory(r, account.ID, account.PasswordHash)

	h.logger.InfoContext(ctx, "account registered",
		slog.String("username", req.Username),
		slog.String("user_id", account.ID))

	resp := api.RegisterResponse{
		UserID:  account.ID,
		Message: "User registered successfully",
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login обрабатывает POST /api/login
// Порядок проверок: блокировка адреса, поиск учетной записи,
// блокировка учетной записи, проверка пароля
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	source := clientAddr(r)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Password == "" {
		sendError(h.logger, w, "password is required", http.StatusBadRequest)
		return
	}

	// Блокировка адреса проверяется до обращения к учетной записи
	sourceLocked, lockMsg, err := h.throttle.IsSourceLocked(ctx, source)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check source lock", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if sourceLocked {
		h.logger.WarnContext(ctx, "login rejected: source locked", slog.String("source", source))
		h.throttle.RecordAttempt(ctx, req.Username, false, source)
		sendError(h.logger, w, lockMsg, http.StatusTooManyRequests)
		return
	}

	account, err := h.accounts.GetAccountByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			h.logger.WarnContext(ctx, "login failed: account not found", slog.String("username", req.Username))
			h.throttle.RecordAttempt(ctx, req.Username, false, source)
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	accountLocked, lockMsg, err := h.throttle.IsAccountLocked(ctx, account.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check account lock", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if accountLocked {
		h.logger.WarnContext(ctx, "login rejected: account locked", slog.String("username", req.Username))
		h.throttle.RecordAttempt(ctx, req.Username, false, source)
		sendError(h.logger, w, lockMsg, http.StatusLocked)
		return
	}

	if !h.hasher.Verify(req.Password, account.PasswordHash) {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", req.Username))
		h.throttle.RecordAttempt(ctx, req.Username, false, source)

		count, err := h.throttle.RegisterFailure(ctx, account.ID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to register login failure", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		// Эта неудача могла достигнуть порога блокировки
		nowLocked, lockMsg, err := h.throttle.IsAccountLocked(ctx, account.ID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to check account lock", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		if nowLocked {
			h.logger.WarnContext(ctx, "account locked after failed login",
				slog.String("username", req.Username),
				slog.Int("failed_attempts", count))
			sendError(h.logger, w, lockMsg, http.StatusLocked)
			return
		}

		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.throttle.RecordAttempt(ctx, req.Username, true, source)

	if err := h.throttle.RegisterSuccess(ctx, account.ID); err != nil {
		// Счетчик не сбросился, но вход корректный - продолжаем
		h.logger.WarnContext(ctx, "failed to reset failure counter", slog.Any("error", err))
	}

	if err := h.accounts.UpdateLastLogin(ctx, account.ID, time.Now()); err != nil {
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	accessToken, expiresIn, err := h.tokens.Issue(account.ID, account.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", req.Username),
		slog.String("user_id", account.ID))

	resp := api.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ChangePassword обрабатывает POST /api/change-password
// Требует аутентификации и подтверждения текущим паролем
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode change password request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetAccountByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, account.PasswordHash) {
		h.logger.WarnContext(ctx, "change password rejected: wrong current password",
			slog.String("user_id", userID))
		sendError(h.logger, w, "current password is incorrect", http.StatusUnauthorized)
		return
	}

	// Проверка истории не даст переиспользовать и текущий пароль
	if err := h.policy.Validate(ctx, req.NewPassword, account.ID); err != nil {
		h.logger.WarnContext(ctx, "new password rejected by policy", slog.String("user_id", userID))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	newHash := h.hasher.Hash(req.NewPassword)
	if err := h.accounts.UpdatePasswordHash(ctx, account.ID, newHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password hash", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.recordPasswordHistory(r, account.ID, newHash)

	h.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Password changed successfully"}, http.StatusOK)
}

// Me обрабатывает GET /api/me
// Возвращает информацию о текущем пользователе
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.GetAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			sendError(h.logger, w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.UserResponse{
		UserID:    account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// recordPasswordHistory добавляет принятый hash в историю паролей
// Ошибка записи не отменяет уже принятый пароль, только логируется
func (h *AuthHandler) recordPasswordHistory(r *http.Request, accountID, passwordHash string) {
	ctx := r.Context()

	entry := &models.PasswordHistoryEntry{
		AccountID:    accountID,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := h.history.AddHistoryEntry(ctx, entry); err != nil {
		h.logger.ErrorContext(ctx, "failed to record password history",
			slog.String("account_id", accountID),
			slog.Any("error", err))
	}
}
