package commands

import (
	"gas-tracker-telegram-bot/lib/translation"
)

func Welcome() string {
	return translation.Translate("👋 *Welcome to Ethereum Gas Tracker Bot\\!*\n\n" +
		"I help you monitor Ethereum gas prices in real\\-time\\.\n\n" +
		"*Commands:*\n" +
		"/gas \\- Get current gas prices\n" +
		"/setalert \\- Set a gas price alert\n" +
		"/myalerts \\- View your active alerts\n" +
		"/help \\- Show help information\n\n" +
		"Click the button below to check current gas prices\\! ⬇️")
}

func Help() string {
	return translation.Translate("*🤖 Gas Tracker Bot Help*\n\n" +
		"*Commands:*\n" +
		"/start \\- Start the bot\n" +
		"/gas \\- Get current gas prices\n" +
		"/setalert \\- Set a gas price alert \\(`/setalert 15` works too\\)\n" +
		"/myalerts \\- View your active alerts\n" +
		"/delalert \\- Delete an alert by its number\n" +
		"/clearalerts \\- Delete all your alerts\n" +
		"/help \\- Show this help message\n\n" +
		"*Gas Price Alerts:*\n" +
		"Set alerts to be notified when gas drops to your target price\\. " +
		"The bot checks gas prices periodically and notifies you once per alert\\.\n\n" +
		"*Understanding Gas Prices:*\n" +
		"\\- *Low \\(Safe\\)*: Cheapest option, slower confirmation\n" +
		"\\- *Standard*: Balanced speed and cost\n" +
		"\\- *Fast*: Priority processing, higher cost\n\n" +
		"*Gas Status Colors:*\n" +
		"🟢 LOW \\- Great time to transact\\!\n" +
		"🟡 NORMAL \\- Standard network activity\n" +
		"🟠 ELEVATED \\- Consider waiting\n" +
		"🔴 HIGH \\- Wait if not urgent")
}

func QuickHelp() string {
	return translation.Translate("*🤖 Quick Help*\n\n" +
		"*Button Functions:*\n" +
		"🔄 Refresh \\- Update gas prices\n" +
		"⏰ Set Alert \\- Create price alerts\n" +
		"📋 My Alerts \\- View your alerts\n" +
		"ℹ️ Help \\- Show this message\n\n" +
		"Use /help for detailed information\\.")
}
