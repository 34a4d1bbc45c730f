package models

import "time"

// Secret представляет именованный секрет приложения (соль, ключ подписи)
// Создается один раз, после этого неизменяем
type Secret struct {
	Name      string    `json:"name"`       // имя секрета (например "password_salt")
	Value     string    `json:"value"`      // base64 encoded значение
	CreatedAt time.Time `json:"created_at"` // время создания
}

// PasswordHistoryEntry представляет одну запись истории паролей пользователя
// Append-only: записи никогда не изменяются и не удаляются
type PasswordHistoryEntry struct {
	ID           int64     `json:"id"`
	AccountID    string    `json:"account_id"`    // ID учетной записи
	PasswordHash string    `json:"-"`              // PBKDF2 digest принятого пароля
	CreatedAt    time.Time `json:"created_at"`    // время принятия пароля
}

// LoginAttempt представляет одну попытку входа (audit log)
type LoginAttempt struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`     // username из запроса (может не существовать)
	Successful  bool      `json:"successful"`   // успешная ли попытка
	SourceAddr  string    `json:"source_addr"`  // IP адрес источника (IPv4/IPv6)
	AttemptTime time.Time `json:"attempt_time"` // время попытки
}

// AccountLockState представляет состояние блокировки учетной записи
// Одна строка на учетную запись, обновляется при каждой попытке входа
type AccountLockState struct {
	AccountID      string     `json:"account_id"`
	Locked         bool       `json:"locked"`                 // заблокирована ли учетная запись
	LockedUntil    *time.Time `json:"locked_until,omitempty"` // время истечения блокировки
	FailedAttempts int        `json:"failed_attempts"`        // счетчик последовательных неудач
}

// PasswordResetToken представляет токен сброса пароля
// Одноразовый, с коротким сроком действия
type PasswordResetToken struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"account_id"` // ID учетной записи
	Email     string    `json:"email"`      // email, на который отправлен токен
	Token     string    `json:"-"`          // opaque token (base64url, 32 случайных байта)
	CreatedAt time.Time `json:"created_at"` // время создания
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	Used      bool      `json:"used"`       // использован ли токен
}
