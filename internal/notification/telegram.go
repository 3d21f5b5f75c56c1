package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// TelegramNotifier delivers alerts through the Telegram Bot API.
type TelegramNotifier struct {
	token  string
	chatID string
}

// NewTelegramNotifier creates a Telegram notifier from a @BotFather token
// and a target chat or channel ID.
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{token: token, chatID: chatID}
}

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	prefix := "ℹ️"
	switch alert.Level {
	case AlertWarning:
		prefix = "⚠️"
	case AlertCritical:
		prefix = "🚨"
	}

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("%s *%s*\n\n%s", prefix, mdEscape(alert.Title), mdEscape(alert.Message)),
		"parse_mode": "MarkdownV2",
	}
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	if err := postJSON(ctx, endpoint, payload); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	log.Printf("[telegram] sent alert: %s", alert.Title)
	return nil
}

// mdEscape escapes Telegram MarkdownV2 metacharacters.
func mdEscape(s string) string {
	const specials = `_*[]()~` + "`" + `>#+-=|{}.!`
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
