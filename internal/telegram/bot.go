package telegram

import (
	"context"

	"gas-tracker-telegram-bot/internal/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const parseMode = "MarkdownV2"

// NewBot creates new telegram bot
func NewBot(c BotConfig, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	api.Debug = c.Debug
	log.Debugf("authorized on account %s", api.Self.UserName)

	return newBot(api, c, deps), nil
}

func newBot(api sender, c BotConfig, deps Deps) *Bot {
	return &Bot{
		api:           api,
		Config:        c,
		deps:          deps,
		limiter:       newUserLimiter(rate.Limit(3), 5),
		awaitingPrice: make(map[types.Subscriber]bool),
	}
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	api, ok := b.api.(*tgbotapi.BotAPI)
	if !ok {
		return nil, errors.New("updates are only available from the telegram api")
	}

	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return api.GetUpdatesChan(updatesConfig), nil
}

// StopReceivingUpdates closes the updates channel.
func (b *Bot) StopReceivingUpdates() {
	if api, ok := b.api.(*tgbotapi.BotAPI); ok {
		api.StopReceivingUpdates()
	}
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.DisableWebPagePreview = true
	msg.ParseMode = parseMode
	if m.ReplyMarkup != nil {
		msg.ReplyMarkup = m.ReplyMarkup
	}
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
	}
	return nil
}

// editMessage replaces the text and keyboard of a message the bot sent earlier.
func (b *Bot) editMessage(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = parseMode
	edit.DisableWebPagePreview = true
	if _, err := b.api.Send(edit); err != nil {
		log.Errorf("could not edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

// Notify delivers a triggered alert to its subscriber.
func (b *Bot) Notify(ctx context.Context, n types.Notification) error {
	if b.deps.Renderer == nil {
		return errors.New("no renderer configured")
	}

	msg := Message{
		ChatID:      int64(n.Subscriber),
		Text:        b.deps.Renderer.AlertNotification(n),
		ReplyMarkup: singleButtonKeyboard("⛽ View Gas Prices"),
	}

	// tgbotapi has no context support: after ctx expires the send may still complete
	// and reach the subscriber even though the notification is reported as failed.
	done := make(chan error, 1)
	go func() {
		done <- b.SendMessage(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "notify subscriber %d", n.Subscriber)
		}
		log.Infof("🔔 alert %s sent to subscriber %d", n.Alert.ID, n.Subscriber)
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "notify subscriber %d", n.Subscriber)
	}
}
