package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// ThrottleConfig описывает пороги и длительности блокировок
// Per-source окно длиннее и порог выше, чем per-account: источник
// перебирает много учетных записей, учетная запись атакуется прицельно
type ThrottleConfig struct {
	MaxAccountFailures  int           // порог неудач до блокировки учетной записи
	AccountLockDuration time.Duration // длительность блокировки учетной записи
	MaxSourceFailures   int           // порог неудач с одного адреса
	SourceLockDuration  time.Duration // длительность блокировки адреса
	FailureWindow       time.Duration // скользящее окно подсчета неудач
}

// DefaultThrottleConfig возвращает конфигурацию по умолчанию
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAccountFailures:  3,
		AccountLockDuration: 30 * time.Minute,
		MaxSourceFailures:   10,
		SourceLockDuration:  60 * time.Minute,
		FailureWindow:       24 * time.Hour,
	}
}

// Throttle отслеживает попытки входа и управляет блокировками
// Состояние учетной записи: Unlocked -> Locked(expiry) -> Unlocked (лениво по истечении)
type Throttle struct {
	logger   *slog.Logger
	attempts storage.AttemptStorage
	locks    storage.LockStorage
	cfg      ThrottleConfig
	now      func() time.Time
}

// NewThrottle создает Throttle
func NewThrottle(logger *slog.Logger, attempts storage.AttemptStorage, locks storage.LockStorage, cfg ThrottleConfig) *Throttle {
	return &Throttle{
		logger:   logger,
		attempts: attempts,
		locks:    locks,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (t *Throttle) SetClock(now func() time.Time) {
	t.now = now
}

// RecordAttempt добавляет запись в audit log попыток входа
// Запись advisory: ошибка записи логируется, но не блокирует вход,
// иначе отказ audit-хранилища остановил бы все логины
func (t *Throttle) RecordAttempt(ctx context.Context, username string, successful bool, sourceAddr string) {
	attempt := &models.LoginAttempt{
		Username:    username,
		Successful:  successful,
		SourceAddr:  sourceAddr,
		AttemptTime: t.now(),
	}

	if err := t.attempts.RecordAttempt(ctx, attempt); err != nil {
		t.logger.ErrorContext(ctx, "failed to record login attempt",
			slog.String("username", username),
			slog.Any("error", err))
	}
}

// IsSourceLocked проверяет, заблокирован ли адрес источника
// Блокировка вычисляется из audit log: порог неудач в скользящем окне,
// срок от самой старой неудачи в окне
// Ошибка чтения пробрасывается: проверка безопасности не должна
// молча превращаться в неограниченные попытки
func (t *Throttle) IsSourceLocked(ctx context.Context, sourceAddr string) (bool, string, error) {
	since := t.now().Add(-t.cfg.FailureWindow)

	count, err := t.attempts.CountRecentFailuresBySource(ctx, sourceAddr, since)
	if err != nil {
		return false, "", fmt.Errorf("failed to count source failures: %w", err)
	}

	if count < t.cfg.MaxSourceFailures {
		return false, "", nil
	}

	oldest, ok, err := t.attempts.OldestRecentFailureBySource(ctx, sourceAddr, since)
	if err != nil {
		return false, "", fmt.Errorf("failed to get oldest source failure: %w", err)
	}
	if !ok {
		return false, "", nil
	}

	lockExpires := oldest.Add(t.cfg.SourceLockDuration)
	if !lockExpires.After(t.now()) {
		return false, "", nil
	}

	minutes := remainingMinutes(lockExpires, t.now())
	return true, fmt.Sprintf("Too many login attempts from this address. Try again in %d minutes.", minutes), nil
}

// IsAccountLocked проверяет состояние блокировки учетной записи
// Истекшая блокировка лениво сбрасывается при чтении
func (t *Throttle) IsAccountLocked(ctx context.Context, accountID string) (bool, string, error) {
	state, err := t.locks.GetLockState(ctx, accountID)
	if err != nil {
		return false, "", fmt.Errorf("failed to read lock state: %w", err)
	}

	if !state.Locked {
		return false, "", nil
	}

	// Истекшая блокировка считается снятой даже до перезаписи строки
	if state.LockedUntil != nil && !state.LockedUntil.After(t.now()) {
		state.Locked = false
		state.LockedUntil = nil
		state.FailedAttempts = 0

		if err := t.locks.UpsertLockState(ctx, state); err != nil {
			// Сброс не удался, но блокировка уже истекла - вход разрешен
			t.logger.WarnContext(ctx, "failed to clear expired lock",
				slog.String("account_id", accountID),
				slog.Any("error", err))
		}

		return false, "", nil
	}

	minutes := 0
	if state.LockedUntil != nil {
		minutes = remainingMinutes(*state.LockedUntil, t.now())
	}

	return true, fmt.Sprintf("Account is locked. Try again in %d minutes.", minutes), nil
}

// RegisterFailure увеличивает счетчик неудач учетной записи
// При достижении порога переводит запись в состояние Locked(now + duration)
// Возвращает новое значение счетчика
func (t *Throttle) RegisterFailure(ctx context.Context, accountID string) (int, error) {
	state, err := t.locks.GetLockState(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to read lock state: %w", err)
	}

	state.FailedAttempts++

	if state.FailedAttempts >= t.cfg.MaxAccountFailures {
		until := t.now().Add(t.cfg.AccountLockDuration)
		state.Locked = true
		state.LockedUntil = &until

		t.logger.WarnContext(ctx, "account locked after repeated failures",
			slog.String("account_id", accountID),
			slog.Int("failed_attempts", state.FailedAttempts))
	}

	if err := t.locks.UpsertLockState(ctx, state); err != nil {
		return 0, fmt.Errorf("failed to update lock state: %w", err)
	}

	return state.FailedAttempts, nil
}

// RegisterSuccess сбрасывает счетчик неудач после успешного входа
func (t *Throttle) RegisterSuccess(ctx context.Context, accountID string) error {
	state := &models.AccountLockState{
		AccountID:      accountID,
		Locked:         false,
		LockedUntil:    nil,
		FailedAttempts: 0,
	}

	if err := t.locks.UpsertLockState(ctx, state); err != nil {
		return fmt.Errorf("failed to reset lock state: %w", err)
	}

	return nil
}

// remainingMinutes возвращает оставшиеся минуты блокировки, минимум 1
// В сообщении никогда не раскрываются внутренние счетчики
func remainingMinutes(until, now time.Time) int {
	minutes := int(until.Sub(now).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
