package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
)

// DefaultResetTokenTTL - срок действия токена сброса пароля
const DefaultResetTokenTTL = 20 * time.Minute

// ErrResetTokenInvalid возвращается при несуществующем, использованном
// или истекшем токене; причина не детализируется намеренно
var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// Sender доставляет токен сброса пользователю (out-of-band)
type Sender interface {
	// SendResetMessage отправляет письмо с токеном на адрес
	SendResetMessage(ctx context.Context, email, token string) error
}

// ResetService управляет жизненным циклом токенов сброса пароля
// Состояния: NoActiveToken -> TokenIssued(expiry) -> Used
// На учетную запись одновременно валиден максимум один токен
type ResetService struct {
	logger   *slog.Logger
	accounts storage.AccountStorage
	tokens   storage.ResetTokenStorage
	sender   Sender
	ttl      time.Duration
	now      func() time.Time
}

// NewResetService создает ResetService
func NewResetService(logger *slog.Logger, accounts storage.AccountStorage, tokens storage.ResetTokenStorage, sender Sender, ttl time.Duration) *ResetService {
	return &ResetService{
		logger:   logger,
		accounts: accounts,
		tokens:   tokens,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *ResetService) SetClock(now func() time.Time) {
	s.now = now
}

// Request обрабатывает запрос на сброс пароля для адреса
// Для несуществующего адреса возвращает nil без побочных эффектов:
// ответ одинаков в обоих случаях, чтобы исключить перечисление учетных записей
// Неудача доставки письма не отменяет выпущенный токен (логируется и все)
func (s *ResetService) Request(ctx context.Context, email string) error {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			s.logger.DebugContext(ctx, "reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	// Предыдущие невостребованные токены перестают действовать
	if err := s.tokens.InvalidateResetTokens(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	tokenValue, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now()
	token := &models.PasswordResetToken{
		AccountID: account.ID,
		Email:     email,
		Token:     tokenValue,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.tokens.CreateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	// Токен остается валидным даже если письмо не ушло: иначе сбойный
	// почтовый провайдер полностью блокировал бы восстановление доступа
	if err := s.sender.SendResetMessage(ctx, email, tokenValue); err != nil {
		s.logger.ErrorContext(ctx, "failed to send reset message",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "reset token issued", slog.String("account_id", account.ID))

	return nil
}

// Verify проверяет токен без потребления
// Возвращает ErrResetTokenInvalid для любого невалидного токена
func (s *ResetService) Verify(ctx context.Context, email, tokenValue string) (*models.Account, error) {
	account, _, err := s.lookup(ctx, email, tokenValue)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Consume проверяет и потребляет токен ровно один раз
// Повторное потребление того же токена не проходит
func (s *ResetService) Consume(ctx context.Context, email, tokenValue string) (*models.Account, error) {
	account, token, err := s.lookup(ctx, email, tokenValue)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.MarkResetTokenUsed(ctx, token.ID); err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			// Конкурентный запрос успел потребить токен первым
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	s.logger.InfoContext(ctx, "reset token consumed", slog.String("account_id", account.ID))

	return account, nil
}

// lookup находит учетную запись и ее активный неистекший токен
func (s *ResetService) lookup(ctx context.Context, email, tokenValue string) (*models.Account, *models.PasswordResetToken, error) {
	if tokenValue == "" {
		return nil, nil, ErrResetTokenInvalid
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, nil, ErrResetTokenInvalid
		}
		return nil, nil, fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.tokens.GetActiveResetToken(ctx, account.ID, tokenValue)
	if err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			return nil, nil, ErrResetTokenInvalid
		}
		return nil, nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if !token.ExpiresAt.After(s.now()) {
		return nil, nil, ErrResetTokenInvalid
	}

	return account, token, nil
}

// generateResetToken возвращает 32 случайных байта в base64url
// Высокая энтропия, никаких предсказуемых счетчиков
func generateResetToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
