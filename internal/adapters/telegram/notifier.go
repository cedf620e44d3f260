package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/Robinhuo1/TradingButler/pkg/errors"
	"github.com/Robinhuo1/TradingButler/pkg/logger"
)

// Notifier delivers report digests to Telegram chats. Outbound only:
// it never polls for updates.
type Notifier struct {
	api         *tgbotapi.BotAPI
	chatIDs     []int64
	log         *logger.Logger
	rateLimiter *rate.Limiter
}

// Config contains Telegram notifier configuration
type Config struct {
	Token          string
	ChatIDs        []int64
	HTTPTimeout    time.Duration
	RateLimitBurst int // default: 30
	RateLimitRate  int // per second, default: 20
}

// NewNotifier creates a Telegram notifier
func NewNotifier(cfg Config, log *logger.Logger) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "at least one telegram chat id is required")
	}

	// Set defaults
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 30 // Telegram allows bursts
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 20 // Conservative: 20 msg/sec (Telegram limit is 30)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &Notifier{
		api:         api,
		chatIDs:     cfg.ChatIDs,
		log:         log,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
	}, nil
}

// SendDigest sends the plain-text report digest to every configured chat
func (n *Notifier) SendDigest(ctx context.Context, digest string) error {
	for _, chatID := range n.chatIDs {
		if err := n.rateLimiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "telegram rate limiter")
		}
		msg := tgbotapi.NewMessage(chatID, digest)
		if _, err := n.api.Send(msg); err != nil {
			return errors.Wrapf(err, "send digest to chat %d", chatID)
		}
		n.log.Debugf("report digest sent to chat %d", chatID)
	}
	return nil
}
