package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gas-tracker-telegram-bot/config"
	"gas-tracker-telegram-bot/internal/alert"
	"gas-tracker-telegram-bot/internal/commands"
	"gas-tracker-telegram-bot/internal/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

type staticFees struct {
	levels types.FeeLevels
	err    error
}

func (s staticFees) FetchFeeLevels(context.Context) (types.FeeLevels, error) {
	return s.levels, s.err
}

type staticQuote float64

func (q staticQuote) FetchQuote(context.Context) float64 { return float64(q) }

func newTestBot(fees alert.FeeSource) (*Bot, *fakeAPI, *alert.Manager) {
	api := &fakeAPI{}
	manager := alert.NewManager(alert.NewStore(), alert.Limits{MinPrice: 0.1, MaxPrice: 1000, MaxPerUser: 2})
	renderer := commands.NewRenderer(
		[]config.GasLimit{
			{Key: "eth_transfer", Label: "ETH Transfer", Units: 21000},
			{Key: "token_swap", Label: "Token Swap", Units: 356190},
		},
		config.StatusThresholds{Low: 5, Normal: 10, Elevated: 30},
	)
	b := newBot(api, BotConfig{RequestTimeout: time.Second}, Deps{
		Alerts:   manager,
		Fees:     fees,
		Quotes:   staticQuote(2500),
		Renderer: renderer,
	})
	return b, api, manager
}

func command(sub int64, text string) *tgbotapi.Message {
	length := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		length = i
	}
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: sub},
		Chat:     &tgbotapi.Chat{ID: sub},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func plain(sub int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: sub},
		Chat: &tgbotapi.Chat{ID: sub},
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"15", 15},
		{" 9.5 ", 9.5},
		{"12 gwei", 12},
		{"12Gwei", 12},
		{"7,25", 7.25},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, tc.in)
	}

	for _, in := range []string{"", "abc", "gwei", "1.2.3"} {
		_, err := ParsePrice(in)
		assert.True(t, errors.Is(err, errInvalidNumber), in)
	}
}

func TestSetAlertWithArgument(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})

	b.HandleMessage(context.Background(), command(1, "/setalert 15"))

	alerts := manager.ListAlerts(1)
	require.Len(t, alerts, 1)
	assert.Equal(t, 15.0, alerts[0].TargetPrice)
	assert.Contains(t, api.lastText(t), "Alert Set Successfully")
	assert.False(t, b.isAwaitingPrice(1))
}

func TestSetAlertConversation(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})
	ctx := context.Background()

	// plain text outside a conversation is ignored
	b.HandleMessage(ctx, plain(1, "15"))
	assert.Empty(t, api.sent)

	b.HandleMessage(ctx, command(1, "/setalert"))
	assert.True(t, b.isAwaitingPrice(1))
	assert.Contains(t, api.lastText(t), "Set Gas Price Alert")

	b.HandleMessage(ctx, plain(1, "cheap please"))
	assert.Contains(t, api.lastText(t), "Invalid input")
	assert.Empty(t, manager.ListAlerts(1))
	assert.True(t, b.isAwaitingPrice(1))

	b.HandleMessage(ctx, plain(1, "5000"))
	assert.Contains(t, api.lastText(t), "Price must be between 0\\.1 and 1000 Gwei")
	assert.True(t, b.isAwaitingPrice(1))

	b.HandleMessage(ctx, plain(1, "12"))
	require.Len(t, manager.ListAlerts(1), 1)
	assert.False(t, b.isAwaitingPrice(1))
}

func TestCancelConversation(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})
	ctx := context.Background()

	b.HandleMessage(ctx, command(1, "/setalert"))
	b.HandleMessage(ctx, command(1, "/cancel"))
	assert.Contains(t, api.lastText(t), "cancelled")

	sent := len(api.sent)
	b.HandleMessage(ctx, plain(1, "12"))
	assert.Len(t, api.sent, sent)
	assert.Empty(t, manager.ListAlerts(1))
}

func TestSetAlertCapacity(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})
	ctx := context.Background()

	b.HandleMessage(ctx, command(1, "/setalert 10"))
	b.HandleMessage(ctx, command(1, "/setalert 11"))
	b.HandleMessage(ctx, command(1, "/setalert 12"))

	assert.Len(t, manager.ListAlerts(1), 2)
	assert.Contains(t, api.lastText(t), "You can only have 2 active alerts")
}

func TestDeleteAlertIsOneBased(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})
	ctx := context.Background()

	_, err := manager.AddAlert(1, 10)
	require.NoError(t, err)
	_, err = manager.AddAlert(1, 11)
	require.NoError(t, err)

	b.HandleMessage(ctx, command(1, "/delalert 1"))
	assert.Contains(t, api.lastText(t), "Alert \\#1 deleted")
	alerts := manager.ListAlerts(1)
	require.Len(t, alerts, 1)
	assert.Equal(t, 11.0, alerts[0].TargetPrice)

	b.HandleMessage(ctx, command(1, "/delalert 5"))
	assert.Contains(t, api.lastText(t), "Alert \\#5 not found")

	b.HandleMessage(ctx, command(1, "/delalert x"))
	assert.Contains(t, api.lastText(t), "Usage")
	assert.Len(t, manager.ListAlerts(1), 1)
}

func TestClearAlerts(t *testing.T) {
	b, api, manager := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20}})
	ctx := context.Background()

	b.HandleMessage(ctx, command(1, "/clearalerts"))
	assert.Contains(t, api.lastText(t), "don't have any alerts")

	_, err := manager.AddAlert(1, 10)
	require.NoError(t, err)
	b.HandleMessage(ctx, command(1, "/clearalerts"))
	assert.Contains(t, api.lastText(t), "Cleared 1 alert")
	assert.False(t, manager.HasAlerts(1))
}

func TestGasCommandUnavailable(t *testing.T) {
	b, api, _ := newTestBot(staticFees{err: errors.New("down")})

	b.HandleMessage(context.Background(), command(1, "/gas"))
	assert.Contains(t, api.lastText(t), "Unable to fetch gas data")
}

func TestMyAlertsDegradesWithoutFee(t *testing.T) {
	b, api, manager := newTestBot(staticFees{err: errors.New("down")})

	_, err := manager.AddAlert(1, 10)
	require.NoError(t, err)

	b.HandleMessage(context.Background(), command(1, "/myalerts"))
	assert.Contains(t, api.lastText(t), "N/A Gwei")
}

func TestCallbacks(t *testing.T) {
	b, api, _ := newTestBot(staticFees{levels: types.FeeLevels{Standard: 20, BaseFee: 19}})
	ctx := context.Background()
	msg := &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 1}}

	b.HandleCallbackQuery(ctx, &tgbotapi.CallbackQuery{ID: "a", From: &tgbotapi.User{ID: 1}, Message: msg, Data: callbackRefresh})
	assert.Contains(t, api.lastText(t), "Ethereum Gas Tracker")

	b.HandleCallbackQuery(ctx, &tgbotapi.CallbackQuery{ID: "b", From: &tgbotapi.User{ID: 1}, Message: msg, Data: callbackSetAlert})
	assert.Contains(t, api.lastText(t), "Set Gas Price Alert")
	assert.True(t, b.isAwaitingPrice(1))

	b.HandleCallbackQuery(ctx, &tgbotapi.CallbackQuery{ID: "c", From: &tgbotapi.User{ID: 1}, Message: msg, Data: "bogus"})
	assert.Len(t, api.requests, 3)
	answer, ok := api.requests[2].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Contains(t, answer.Text, "Unknown action")
}

func TestNotify(t *testing.T) {
	b, api, _ := newTestBot(staticFees{})

	err := b.Notify(context.Background(), types.Notification{
		Subscriber: 42,
		Alert:      types.Alert{ID: "x", TargetPrice: 10},
		CurrentFee: 9.5,
		EthPrice:   2000,
	})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, parseMode, msg.ParseMode)
	assert.Contains(t, msg.Text, "Gas Alert Triggered")
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, callbackRefresh, *markup.InlineKeyboard[0][0].CallbackData)
}

func TestNotifyPropagatesSendError(t *testing.T) {
	b, api, _ := newTestBot(staticFees{})
	api.sendErr = errors.New("blocked by user")

	err := b.Notify(context.Background(), types.Notification{Subscriber: 42, Alert: types.Alert{TargetPrice: 10}, CurrentFee: 9})
	assert.Error(t, err)
}

func TestUserLimiter(t *testing.T) {
	l := newUserLimiter(1, 2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2), "limits are per subscriber")
}

type stalledAPI struct {
	fakeAPI
	release chan struct{}
}

func (s *stalledAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	<-s.release
	return s.fakeAPI.Send(c)
}

func TestNotifyReturnsWhenContextExpires(t *testing.T) {
	_, _, manager := newTestBot(staticFees{})
	api := &stalledAPI{release: make(chan struct{})}
	defer close(api.release)

	b := newBot(api, BotConfig{}, Deps{
		Alerts:   manager,
		Renderer: commands.NewRenderer(nil, config.StatusThresholds{Low: 5, Normal: 10, Elevated: 30}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := b.Notify(ctx, types.Notification{Subscriber: 42, Alert: types.Alert{TargetPrice: 10}, CurrentFee: 9})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}
