package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTelegramBaseUrl = "https://api.telegram.org"
	telegramTimeout        = 30 * time.Second

	// Telegram asks bots to stay under one message per second in a single chat
	telegramPerSecond = 1
	telegramBurst     = 3
)

// TelegramSender posts notifications through the Bot API sendMessage method with HTML formatting.
type TelegramSender struct {
	httpClient *http.Client
	baseUrl    string
	token      string
	chatId     string
	limiter    *rate.Limiter
}

func NewTelegramSender(baseUrl string, token string, chatId string) (*TelegramSender, error) {
	if token == "" {
		return nil, errors.New("telegram API token is required")
	}
	if chatId == "" {
		return nil, errors.New("telegram chat ID is required")
	}
	if baseUrl == "" {
		baseUrl = DefaultTelegramBaseUrl
	}
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("telegram base URL must use http or https scheme, got %q", u.Scheme)
	}

	return &TelegramSender{
		httpClient: &http.Client{Timeout: telegramTimeout},
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		token:      token,
		chatId:     chatId,
		limiter:    rate.NewLimiter(rate.Limit(telegramPerSecond), telegramBurst),
	}, nil
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, n Notification) error {
	if n.Message == "" {
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{
		"chat_id":    {s.chatId},
		"text":       {n.Message},
		"parse_mode": {"HTML"},
	}
	endpoint := fmt.Sprintf("%v/bot%v/sendMessage", s.baseUrl, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return s.redact(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.redact(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendMessage failed, status: %v, text: %v", resp.Status, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// redact keeps the bot token out of error messages, which end up in the log.
func (s *TelegramSender) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, s.token, "REDACTED")
	}
	return err
}
