package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gas-tracker-telegram-bot/internal/alert"
	"gas-tracker-telegram-bot/internal/commands"
	"gas-tracker-telegram-bot/internal/types"
	"gas-tracker-telegram-bot/lib/helpers"
	"gas-tracker-telegram-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// errInvalidNumber marks chat input that is not a price at all.
var errInvalidNumber = errors.New("invalid number")

// HandleUpdate processes Telegram updates
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.HandleCallbackQuery(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.HandleMessage(ctx, u.Message)
	default:
		log.Debug("received non-message update")
	}
}

// HandleMessage answers commands and, while a price is awaited, plain text.
func (b *Bot) HandleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	sub := subscriberOf(m.From, m.Chat)
	if !m.IsCommand() && !b.isAwaitingPrice(sub) {
		return
	}
	if !b.limiter.Allow(sub) {
		log.Debugf("rate limited subscriber %d", sub)
		return
	}

	if b.deps.Metrics != nil {
		b.deps.Metrics.TrackMessage(m.Chat.ID, chatName(m.Chat))
	}

	var (
		text   string
		markup interface{}
	)
	if m.IsCommand() {
		log.Debugf("received command: %s", m.Command())
		text, markup = b.handleCommand(ctx, sub, m.Command(), m.CommandArguments())
	} else {
		text, markup = b.setAlert(ctx, sub, m.Text)
	}

	err := b.SendMessage(Message{
		ChatID:      m.Chat.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Errorf("Failed to send message: %v", err)
		return
	}
	if b.deps.Metrics != nil {
		b.deps.Metrics.CommandProcessed()
	}
}

func (b *Bot) handleCommand(ctx context.Context, sub types.Subscriber, command, args string) (string, interface{}) {
	switch command {
	case "start":
		return commands.Welcome(), singleButtonKeyboard("⛽ Check Gas Prices")
	case "gas":
		return b.gasReport(ctx), mainKeyboard()
	case "help":
		return commands.Help(), nil
	case "setalert":
		if strings.TrimSpace(args) != "" {
			return b.setAlert(ctx, sub, args)
		}
		b.setAwaitingPrice(sub, true)
		return b.deps.Renderer.SetAlertPrompt(b.currentFee(ctx)), nil
	case "myalerts":
		return b.alertsView(ctx, sub)
	case "delalert":
		return b.deleteAlert(sub, args), nil
	case "clearalerts":
		return b.clearAlerts(sub), nil
	case "cancel":
		b.setAwaitingPrice(sub, false)
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Alert setup cancelled.")), singleButtonKeyboard("⛽ Check Gas Prices")
	default:
		return commands.Help(), nil
	}
}

func (b *Bot) setAlert(ctx context.Context, sub types.Subscriber, input string) (string, interface{}) {
	target, err := ParsePrice(input)
	if err != nil {
		b.setAwaitingPrice(sub, true)
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Invalid input. Please enter a number.")) +
			"\n\n" + translation.Translate("Example: `15`") +
			"\n\n" + helpers.EscapeMarkdownV2(translation.Translate("Or send /cancel")), nil
	}

	a, err := b.deps.Alerts.AddAlert(sub, target)
	if err != nil {
		if errors.Is(err, alert.ErrOutOfRange) {
			b.setAwaitingPrice(sub, true)
		} else {
			b.setAwaitingPrice(sub, false)
		}
		return b.addAlertError(err), nil
	}

	b.setAwaitingPrice(sub, false)
	log.Infof("subscriber %d set an alert at %v Gwei", sub, a.TargetPrice)

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📋 View Alerts", callbackViewAlerts),
			button("⛽ Check Gas", callbackRefresh),
		),
	)
	return b.deps.Renderer.AlertCreated(a, b.currentFee(ctx)), markup
}

// addAlertError turns an AddAlert failure into chat text.
func (b *Bot) addAlertError(err error) string {
	limits := b.deps.Alerts.Limits()
	switch {
	case errors.Is(err, alert.ErrOutOfRange):
		return helpers.EscapeMarkdownV2(translation.Translate(
			"❌ Price must be between %s and %s Gwei",
			helpers.FormatGwei(limits.MinPrice),
			helpers.FormatGwei(limits.MaxPrice),
		)) + "\n\n" + helpers.EscapeMarkdownV2(translation.Translate("Try again or send /cancel"))
	case errors.Is(err, alert.ErrCapacityExceeded):
		return helpers.EscapeMarkdownV2(translation.Translate(
			"❌ You can only have %d active alerts. Please delete some first.",
			limits.MaxPerUser,
		))
	default:
		log.Errorf("could not add alert: %v", err)
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Something went wrong. Please try again later."))
	}
}

func (b *Bot) deleteAlert(sub types.Subscriber, args string) string {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /delalert <number>. See /myalerts for the numbers."))
	}
	if !b.deps.Alerts.DeleteAlert(sub, n-1) {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Alert #%d not found.", n))
	}
	return helpers.EscapeMarkdownV2(translation.Translate("🗑️ Alert #%d deleted.", n))
}

func (b *Bot) clearAlerts(sub types.Subscriber) string {
	count := b.deps.Alerts.ClearAlerts(sub)
	if count == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You don't have any alerts to clear."))
	}
	return helpers.EscapeMarkdownV2(translation.TranslateN(
		"✅ Cleared %d alert.", "✅ Cleared %d alerts.", count,
		count,
	))
}

func (b *Bot) alertsView(ctx context.Context, sub types.Subscriber) (string, tgbotapi.InlineKeyboardMarkup) {
	if !b.deps.Alerts.HasAlerts(sub) {
		return b.deps.Alerts.RenderAlertSummary(sub, 0), noAlertsKeyboard()
	}
	return b.deps.Alerts.RenderAlertSummary(sub, b.currentFee(ctx)), alertsViewKeyboard()
}

// HandleCallbackQuery answers inline keyboard presses by editing the pressed message.
func (b *Bot) HandleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	sub := subscriberOf(cq.From, nil)
	if !b.limiter.Allow(sub) {
		b.answerCallback(cq.ID, translation.Translate("Too many requests, slow down."))
		return
	}
	if cq.Message == nil || cq.Message.Chat == nil {
		b.answerCallback(cq.ID, "")
		return
	}
	if sub == 0 {
		sub = types.Subscriber(cq.Message.Chat.ID)
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch cq.Data {
	case callbackRefresh:
		b.answerCallback(cq.ID, "")
		b.editMessage(chatID, messageID, b.gasReport(ctx), mainKeyboard())
	case callbackSetAlert:
		b.answerCallback(cq.ID, "")
		b.setAwaitingPrice(sub, true)
		b.editMessage(chatID, messageID, b.deps.Renderer.SetAlertPrompt(b.currentFee(ctx)), singleButtonKeyboard("🔙 Back"))
	case callbackViewAlerts:
		b.answerCallback(cq.ID, "")
		text, markup := b.alertsView(ctx, sub)
		b.editMessage(chatID, messageID, text, markup)
	case callbackClearAlerts:
		b.answerCallback(cq.ID, "")
		b.editMessage(chatID, messageID, b.clearAlerts(sub), noAlertsKeyboard())
	case callbackHelp:
		b.answerCallback(cq.ID, "")
		b.editMessage(chatID, messageID, commands.QuickHelp(), mainKeyboard())
	default:
		b.answerCallback(cq.ID, translation.Translate("Unknown action. Please try again."))
		return
	}

	if b.deps.Metrics != nil {
		b.deps.Metrics.CommandProcessed()
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Errorf("could not answer callback %s: %v", id, err)
	}
}

// gasReport fetches fees and the ETH quote and renders the full report.
func (b *Bot) gasReport(ctx context.Context) string {
	ctx, cancel := b.requestContext(ctx)
	defer cancel()

	levels, err := b.deps.Fees.FetchFeeLevels(ctx)
	if err != nil {
		log.Errorf("could not fetch gas data: %v", err)
		return b.deps.Renderer.GasReport(levels, err, 0)
	}
	return b.deps.Renderer.GasReport(levels, nil, b.deps.Quotes.FetchQuote(ctx))
}

// currentFee returns the standard fee or 0 when the oracle cannot be read.
func (b *Bot) currentFee(ctx context.Context) float64 {
	ctx, cancel := b.requestContext(ctx)
	defer cancel()

	levels, err := b.deps.Fees.FetchFeeLevels(ctx)
	if err != nil {
		log.Warnf("current fee unavailable: %v", err)
		return 0
	}
	return levels.Standard
}

func (b *Bot) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.Config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, b.Config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (b *Bot) isAwaitingPrice(sub types.Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.awaitingPrice[sub]
}

func (b *Bot) setAwaitingPrice(sub types.Subscriber, awaiting bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if awaiting {
		b.awaitingPrice[sub] = true
		return
	}
	delete(b.awaitingPrice, sub)
}

// ParsePrice reads a Gwei amount typed in chat, accepting an optional "gwei" suffix and a decimal comma.
func ParsePrice(input string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimSpace(strings.TrimSuffix(s, "gwei"))
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return 0, errInvalidNumber
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(errInvalidNumber, "%q", input)
	}
	return v, nil
}

func subscriberOf(u *tgbotapi.User, c *tgbotapi.Chat) types.Subscriber {
	if u != nil {
		return types.Subscriber(u.ID)
	}
	if c != nil {
		return types.Subscriber(c.ID)
	}
	return 0
}

func chatName(c *tgbotapi.Chat) string {
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("%s-%d", "PrivateChat", c.ID)
}
