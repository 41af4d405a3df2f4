package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tradehook/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// ErrConfigMissing means the tenant has no Telegram token or chat id
// configured. Callers decide whether that is fatal.
var ErrConfigMissing = errors.New("telegram notification config missing")

// MaxMessageLen is Telegram's per-message text limit.
const MaxMessageLen = 4096

const telegramTimeout = 10 * time.Second

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type senderFactory func(token string) (messageSender, error)

// TelegramNotifier delivers notification text to a tenant's chat. Bot
// handles are created lazily per token and reused; telebot bots are safe for
// concurrent sends.
type TelegramNotifier struct {
	factory senderFactory

	mu      sync.Mutex
	senders map[string]messageSender
}

func NewTelegramNotifier() *TelegramNotifier {
	return &TelegramNotifier{
		factory: func(token string) (messageSender, error) {
			return tele.NewBot(tele.Settings{
				Token:  token,
				Client: &http.Client{Timeout: telegramTimeout},
			})
		},
		senders: make(map[string]messageSender),
	}
}

// Send delivers text to the tenant's chat, splitting it into ordered chunks
// of at most MaxMessageLen. All chunks are sent as MarkdownV2. Each send is
// bounded by the bot's transport timeout; ctx cancellation stops the
// remaining chunks.
func (n *TelegramNotifier) Send(ctx context.Context, cfg *domain.TenantConfig, text string) error {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return fmt.Errorf("tenant %s: %w", cfg.ID, ErrConfigMissing)
	}

	sender, err := n.senderFor(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("create telegram bot for tenant %s: %w", cfg.ID, err)
	}

	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2}
	for _, chunk := range ChunkMessage(text, MaxMessageLen) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("send telegram message for tenant %s: %w", cfg.ID, err)
		}
		if _, err := sender.Send(tele.ChatID(cfg.TelegramChatID), chunk, opts); err != nil {
			return fmt.Errorf("send telegram message for tenant %s: %w", cfg.ID, err)
		}
	}
	return nil
}

func (n *TelegramNotifier) senderFor(token string) (messageSender, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sender, ok := n.senders[token]; ok {
		return sender, nil
	}
	sender, err := n.factory(token)
	if err != nil {
		return nil, err
	}
	n.senders[token] = sender
	return sender, nil
}

// ChunkMessage splits text into consecutive segments of at most limit
// characters. Concatenating the chunks reproduces the original text exactly.
// A non-positive limit falls back to MaxMessageLen.
func ChunkMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
