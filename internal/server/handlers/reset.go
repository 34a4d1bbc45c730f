package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/ispadmin/internal/auth"
	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
	"github.com/iudanet/ispadmin/internal/validation"
	"github.com/iudanet/ispadmin/pkg/api"
)

// forgotPasswordMessage - единый ответ независимо от существования адреса,
// чтобы по ответу нельзя было перечислять зарегистрированные email
const forgotPasswordMessage = "If the email is registered, a verification code has been sent"

// ResetHandler обрабатывает восстановление пароля по email
type ResetHandler struct {
	logger   *slog.Logger
	accounts storage.AccountStorage
	history  storage.HistoryStorage
	hasher   *auth.Hasher
	policy   *auth.Policy
	throttle *auth.Throttle
	resets   *auth.ResetService
}

// NewResetHandler создает новый handler для восстановления пароля
func NewResetHandler(
	logger *slog.Logger,
	accounts storage.AccountStorage,
	history storage.HistoryStorage,
	hasher *auth.Hasher,
	policy *auth.Policy,
	throttle *auth.Throttle,
	resets *auth.ResetService,
) *ResetHandler {
	return &ResetHandler{
		logger:   logger,
		accounts: accounts,
		history:  history,
		hasher:   hasher,
		policy:   policy,
		throttle: throttle,
		resets:   resets,
	}
}

// Forgot обрабатывает POST /api/forgot-password
// Ответ всегда 202 с одинаковым сообщением
func (h *ResetHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode forgot password request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.resets.Request(ctx, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "failed to process reset request", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: forgotPasswordMessage}, http.StatusAccepted)
}

// VerifyToken обрабатывает POST /api/verify-reset-token
// Проверяет код без потребления: пользователь узнает, можно ли
// переходить к вводу нового пароля
func (h *ResetHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifyResetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode verify token request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	_, err := h.resets.Verify(ctx, req.Email, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			sendJSON(h.logger, w, api.VerifyResetTokenResponse{Valid: false}, http.StatusOK)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify reset token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.VerifyResetTokenResponse{Valid: true}, http.StatusOK)
}

// Reset обрабатывает POST /api/reset-password
// Код потребляется только после того, как новый пароль прошел политику:
// пользователь с отклоненным паролем может попробовать еще раз с тем же кодом
func (h *ResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode reset password request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.resets.Verify(ctx, req.Email, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify reset token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.policy.Validate(ctx, req.NewPassword, account.ID); err != nil {
		h.logger.WarnContext(ctx, "new password rejected by policy", slog.String("account_id", account.ID))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.resets.Consume(ctx, req.Email, req.Token); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to consume reset token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	newHash := h.hasher.Hash(req.NewPassword)
	if err := h.accounts.UpdatePasswordHash(ctx, account.ID, newHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password hash", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	entry := &models.PasswordHistoryEntry{
		AccountID:    account.ID,
		PasswordHash: newHash,
		CreatedAt:    time.Now(),
	}
	if err := h.history.AddHistoryEntry(ctx, entry); err != nil {
		h.logger.ErrorContext(ctx, "failed to record password history",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
	}

	// Подтвержденный владелец восстановил доступ - блокировка снимается
	if err := h.throttle.RegisterSuccess(ctx, account.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to clear lock after reset", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "password reset completed", slog.String("account_id", account.ID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Password has been reset successfully"}, http.StatusOK)
}
