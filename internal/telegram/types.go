package telegram

import (
	"sync"
	"time"

	"gas-tracker-telegram-bot/internal/alert"
	"gas-tracker-telegram-bot/internal/commands"
	"gas-tracker-telegram-bot/internal/metrics"
	"gas-tracker-telegram-bot/internal/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	RequestTimeout time.Duration
}

// Deps are the services the bot reads from and writes to.
type Deps struct {
	Alerts   *alert.Manager
	Fees     alert.FeeSource
	Quotes   alert.QuoteSource
	Renderer *commands.Renderer
	Metrics  *metrics.BotMetrics
}

// sender is the subset of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot telegram interaction client
type Bot struct {
	api    sender
	Config BotConfig
	deps   Deps

	limiter *userLimiter

	// awaitingPrice marks subscribers whose next plain message is an alert price
	awaitingPrice map[types.Subscriber]bool
	mu            sync.Mutex
}

// Message a telegram message struct
type Message struct {
	ChatID      int64
	Text        string
	ReplyMarkup interface{}
}
