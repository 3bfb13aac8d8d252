// Package notify pushes batch outcomes to the operator's Telegram chat.
// It is a pure event subscriber; nothing in the pipeline depends on it
// and an unconfigured notifier is a silent no-op.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domevents "outreach_backend/internal/events"
	"outreach_backend/platform/config"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers operator messages via the bot sendMessage API.
type TelegramNotifier struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	log        *logger.Logger
}

func NewTelegram(cfg config.NotifyConfig, log *logger.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL: telegramAPIBase,
		token:   cfg.GetTelegramBotToken(),
		chatID:  cfg.GetTelegramChatID(),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// Subscribe registers the notifier on the bus for every batch event.
func (n *TelegramNotifier) Subscribe(bus events.Bus) {
	bus.Subscribe(domevents.TypeImportCompleted, events.HandlerFunc(n.handle))
	bus.Subscribe(domevents.TypeBatchSent, events.HandlerFunc(n.handle))
	bus.Subscribe(domevents.TypeReplyMatched, events.HandlerFunc(n.handle))
}

func (n *TelegramNotifier) handle(ctx context.Context, event events.Event) error {
	text := formatEvent(event)
	if text == "" {
		return nil
	}
	return n.sendMessage(ctx, text)
}

func formatEvent(event events.Event) string {
	switch e := event.(type) {
	case domevents.ImportCompleted:
		return fmt.Sprintf("Import %s finished\nfound: %d\ncreated: %d\nskipped: %d",
			e.Region, e.Found, e.Created, e.Skipped)
	case domevents.BatchSent:
		return fmt.Sprintf("Send batch %s finished\nsent: %d\ninvalid: %d\nno email: %d\nfailed: %d\nready left: %d",
			e.Region, e.Sent, e.Invalid, e.SkippedNoEmail, e.FailedSend, e.RemainingReady)
	case domevents.ReplyMatched:
		return fmt.Sprintf("Reply from %s (%s)", e.ClinicName, e.Sender)
	default:
		return ""
	}
}

// sendMessage posts one message to the configured chat. Unconfigured
// credentials make this a no-op; a provider failure is logged, never
// returned, since notification is strictly best-effort.
func (n *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	if n.token == "" || n.chatID == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn("telegram sendMessage failed", "error", err.Error())
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.log.Warn("telegram sendMessage non-200",
			"status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
	}
	return nil
}
