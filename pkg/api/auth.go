package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // username пользователя
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль в открытом виде (только в запросе)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"` // UUID пользователя
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // пароль в открытом виде
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	TokenType   string `json:"token_type"`   // всегда "bearer"
	ExpiresIn   int64  `json:"expires_in"`   // время жизни токена в секундах
}

// ChangePasswordRequest представляет запрос на смену пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"` // текущий пароль
	NewPassword     string `json:"new_password"`     // новый пароль
}

// ForgotPasswordRequest представляет запрос на сброс пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"` // email учетной записи
}

// VerifyResetTokenRequest представляет запрос на проверку токена сброса
type VerifyResetTokenRequest struct {
	Email string `json:"email"` // email учетной записи
	Token string `json:"token"` // токен из письма
}

// VerifyResetTokenResponse представляет результат проверки токена
type VerifyResetTokenResponse struct {
	Valid bool `json:"valid"` // валиден ли токен
}

// ResetPasswordRequest представляет запрос на установку нового пароля по токену
type ResetPasswordRequest struct {
	Email       string `json:"email"`        // email учетной записи
	Token       string `json:"token"`        // токен из письма
	NewPassword string `json:"new_password"` // новый пароль
}

// UserResponse представляет информацию о текущем пользователе
type UserResponse struct {
	UserID    string `json:"user_id"`    // UUID пользователя
	Username  string `json:"username"`   // username
	Email     string `json:"email"`      // email
	CreatedAt string `json:"created_at"` // время создания (RFC3339)
}

// MessageResponse представляет универсальный ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"` // человекочитаемое сообщение
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
