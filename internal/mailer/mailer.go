// Package mailer доставляет коды восстановления пароля пользователям.
//
// Два варианта Sender:
//   - LogSender для разработки: печатает код в лог вместо отправки
//   - Web3FormsSender для продакшена: отправка через api.web3forms.com
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// web3FormsURL - endpoint Web3Forms API
const web3FormsURL = "https://api.web3forms.com/submit"

// defaultTimeout ограничивает время запроса к почтовому провайдеру
const defaultTimeout = 15 * time.Second

// LogSender пишет код восстановления в лог вместо реальной доставки
// Используется когда ключ Web3Forms не сконфигурирован
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendResetMessage логирует код вместо отправки письма
func (s *LogSender) SendResetMessage(ctx context.Context, email, token string) error {
	s.logger.InfoContext(ctx, "dev mode: password reset verification code",
		slog.String("email", email),
		slog.String("code", token))
	return nil
}

// Web3FormsSender отправляет письма через Web3Forms API
type Web3FormsSender struct {
	logger    *slog.Logger
	client    *http.Client
	endpoint  string
	accessKey string
	fromEmail string
}

// NewWeb3FormsSender создает Web3FormsSender
func NewWeb3FormsSender(logger *slog.Logger, accessKey, fromEmail string) *Web3FormsSender {
	return &Web3FormsSender{
		logger:    logger,
		client:    &http.Client{Timeout: defaultTimeout},
		endpoint:  web3FormsURL,
		accessKey: accessKey,
		fromEmail: fromEmail,
	}
}

// web3FormsResponse - JSON ответ Web3Forms
type web3FormsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendResetMessage отправляет письмо с кодом восстановления
func (s *Web3FormsSender) SendResetMessage(ctx context.Context, email, token string) error {
	message := fmt.Sprintf(`Hello,

We received a request to reset your password. Please use the following verification code:

%s

This verification code is valid for 20 minutes.

You'll need to:
1. Enter this verification code
2. Create a new password after verification

If you did not request a password reset, please ignore this email.

Regards,
The Internet Service Provider Team
`, token)

	form := url.Values{
		"access_key": {s.accessKey},
		"subject":    {"Password Reset Verification Code"},
		"from_name":  {"Internet Service Provider"},
		"from_email": {s.fromEmail},
		"reply_to":   {s.fromEmail},
		"to_email":   {email},
		"message":    {message},
		"json":       {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	var result web3FormsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("mail provider rejected message: %s", result.Message)
	}

	s.logger.DebugContext(ctx, "reset email sent")

	return nil
}
