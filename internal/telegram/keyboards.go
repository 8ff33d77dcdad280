package telegram

import (
	"gas-tracker-telegram-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackRefresh     = "refresh"
	callbackSetAlert    = "set_alert"
	callbackViewAlerts  = "view_alerts"
	callbackClearAlerts = "clear_alerts"
	callbackHelp        = "help"
)

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(translation.Translate(text), data)
}

func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("🔄 Refresh", callbackRefresh),
			button("⏰ Set Alert", callbackSetAlert),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("📋 My Alerts", callbackViewAlerts),
			button("ℹ️ Help", callbackHelp),
		),
	)
}

func alertsViewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("🗑️ Clear All Alerts", callbackClearAlerts)),
		tgbotapi.NewInlineKeyboardRow(button("⏰ Add New Alert", callbackSetAlert)),
		tgbotapi.NewInlineKeyboardRow(button("🔙 Back", callbackRefresh)),
	)
}

func noAlertsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("⏰ Set Alert", callbackSetAlert)),
	)
}

func singleButtonKeyboard(text string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(text, callbackRefresh)),
	)
}
