package commands

import (
	"gas-tracker-telegram-bot/internal/types"
	"gas-tracker-telegram-bot/lib/helpers"
	"gas-tracker-telegram-bot/lib/translation"
)

// AlertNotification renders the message sent when an alert crosses its target.
func (r *Renderer) AlertNotification(n types.Notification) string {
	transfer := TxCost(n.CurrentFee, r.limit("eth_transfer"), n.EthPrice)
	swap := TxCost(n.CurrentFee, r.limit("token_swap"), n.EthPrice)

	return translation.Translate(
		"🔔 *Gas Alert Triggered\\!*\n\n"+
			"🎯 Your target: *%s Gwei*\n"+
			"📊 Current gas: *%s Gwei*\n\n"+
			"💰 *Sample Costs:*\n"+
			"\\- ETH Transfer: $%s\n"+
			"\\- Token Swap: $%s\n\n"+
			"⚡ Great time to make your transaction\\!\n\n"+
			"Use /gas to see full details\\.",
		helpers.EscapeMarkdownV2(helpers.FormatGwei(n.Alert.TargetPrice)),
		helpers.EscapeMarkdownV2(helpers.FormatFee(n.CurrentFee)),
		helpers.EscapeMarkdownV2(helpers.FormatUSD(transfer)),
		helpers.EscapeMarkdownV2(helpers.FormatUSD(swap)),
	)
}

// AlertCreated confirms a new alert. A non-positive currentFee means the oracle could not be read.
func (r *Renderer) AlertCreated(a types.Alert, currentFee float64) string {
	current := "N/A"
	status := translation.Translate("🟢 Active")
	if currentFee > 0 {
		current = helpers.FormatFee(currentFee)
		if currentFee <= a.TargetPrice {
			status = translation.Translate("⚠️ Already below target")
		}
	}

	target := helpers.EscapeMarkdownV2(helpers.FormatGwei(a.TargetPrice))
	return translation.Translate(
		"✅ *Alert Set Successfully\\!*\n\n"+
			"🎯 Target: *%s Gwei*\n"+
			"📊 Current: *%s Gwei*\n"+
			"📍 Status: %s\n\n"+
			"You'll be notified when gas drops to %s Gwei\\!\n\n"+
			"Use /myalerts to view all your alerts\\.",
		target,
		helpers.EscapeMarkdownV2(current),
		helpers.EscapeMarkdownV2(status),
		target,
	)
}

// SetAlertPrompt asks the user for a target price. A non-positive currentFee is shown as N/A.
func (r *Renderer) SetAlertPrompt(currentFee float64) string {
	current := "N/A"
	if currentFee > 0 {
		current = helpers.FormatFee(currentFee)
	}
	return translation.Translate(
		"⏰ *Set Gas Price Alert*\n\n"+
			"Current gas price: *%s Gwei*\n\n"+
			"Please send me the gas price \\(in Gwei\\) you want to be alerted at\\.\n\n"+
			"For example:\n"+
			"\\- Send `10` to be alerted when gas drops to 10 Gwei\n"+
			"\\- Send `15` for a 15 Gwei alert\n\n"+
			"Send /cancel to cancel\\.",
		helpers.EscapeMarkdownV2(current),
	)
}
