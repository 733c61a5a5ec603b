package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// TelegramService sends messages through the Telegram Bot API
type TelegramService struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewTelegramService creates a bot client. apiURL defaults to the public Bot API.
func NewTelegramService(apiURL, token string) *TelegramService {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &TelegramService{
		apiURL: apiURL,
		token:  token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage delivers an HTML formatted message to chatID
func (t *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if t.token == "" || chatID == "" || text == "" {
		return goerr.New("telegram message is incomplete")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode telegram message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token, so the transport error is not wrapped verbatim
		return goerr.New("failed to call telegram API", goerr.Value("chat_id", chatID))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return goerr.New("telegram API returned unexpected status",
			goerr.Value("status", resp.StatusCode), goerr.Value("body", string(detail)))
	}
	return nil
}
