package auth

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/iudanet/ispadmin/internal/server/storage"
)

// PolicyConfig описывает настраиваемые правила составления паролей
// Передается явно, никакого ambient-состояния: тесты варьируют пороги per-case
type PolicyConfig struct {
	MinLength        int      // минимальная длина пароля
	MaxLength        int      // максимальная длина пароля
	RequireUppercase bool     // требовать хотя бы одну заглавную букву
	RequireLowercase bool     // требовать хотя бы одну строчную букву
	RequireDigits    bool     // требовать хотя бы одну цифру
	RequireSpecial   bool     // требовать хотя бы один спецсимвол
	SpecialChars     string   // набор допустимых спецсимволов
	Denylist         []string // запрещенные словарные пароли
	HistoryDepth     int      // сколько последних паролей нельзя переиспользовать
}

// DefaultPolicyConfig возвращает конфигурацию по умолчанию
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinLength:        10,
		MaxLength:        50,
		RequireUppercase: false,
		RequireLowercase: true,
		RequireDigits:    true,
		RequireSpecial:   true,
		SpecialChars:     "!@#$%^&*()_-+=<>?/[]{}|",
		Denylist:         DefaultDenylist,
		HistoryDepth:     3,
	}
}

// Policy проверяет пароли против правил составления, denylist и истории
type Policy struct {
	cfg      PolicyConfig
	hasher   *Hasher
	history  storage.HistoryStorage
	denylist map[string]struct{}
}

// NewPolicy создает Policy
// history может быть nil, тогда проверка истории пропускается
func NewPolicy(cfg PolicyConfig, hasher *Hasher, history storage.HistoryStorage) *Policy {
	denylist := make(map[string]struct{}, len(cfg.Denylist))
	for _, p := range cfg.Denylist {
		denylist[strings.ToLower(p)] = struct{}{}
	}

	return &Policy{
		cfg:      cfg,
		hasher:   hasher,
		history:  history,
		denylist: denylist,
	}
}

// Validate проверяет пароль, правила применяются по порядку, первая ошибка выигрывает
// accountID опционален: пустая строка пропускает проверку истории
// Сообщение об ошибке называет конкретное нарушенное правило
func (p *Policy) Validate(ctx context.Context, password, accountID string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < p.cfg.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.cfg.MinLength)
	}

	if len(password) > p.cfg.MaxLength {
		return fmt.Errorf("password must not exceed %d characters", p.cfg.MaxLength)
	}

	if err := p.validateClasses(password); err != nil {
		return err
	}

	// Проверка по denylist регистронезависимая
	if _, found := p.denylist[strings.ToLower(password)]; found {
		return fmt.Errorf("password is too common or previously compromised")
	}

	if accountID != "" && p.history != nil && p.cfg.HistoryDepth > 0 {
		if err := p.validateHistory(ctx, password, accountID); err != nil {
			return err
		}
	}

	return nil
}

// validateClasses проверяет требуемые классы символов
func (p *Policy) validateClasses(password string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
		if strings.ContainsRune(p.cfg.SpecialChars, c) {
			hasSpecial = true
		}
	}

	if p.cfg.RequireUppercase && !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if p.cfg.RequireLowercase && !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if p.cfg.RequireDigits && !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	if p.cfg.RequireSpecial && !hasSpecial {
		return fmt.Errorf("password must contain at least one special character from: %s", p.cfg.SpecialChars)
	}

	return nil
}

// validateHistory проверяет, что пароль не совпадает с последними N принятыми
// Запрос к истории всегда ограничен HistoryDepth
func (p *Policy) validateHistory(ctx context.Context, password, accountID string) error {
	entries, err := p.history.GetRecentHistory(ctx, accountID, p.cfg.HistoryDepth)
	if err != nil {
		return fmt.Errorf("failed to read password history: %w", err)
	}

	for _, entry := range entries {
		if p.hasher.Verify(password, entry.PasswordHash) {
			return fmt.Errorf("cannot reuse one of your last %d passwords", p.cfg.HistoryDepth)
		}
	}

	return nil
}
