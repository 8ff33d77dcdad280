package commands

import (
	"fmt"
	"strings"
	"time"

	"gas-tracker-telegram-bot/config"
	"gas-tracker-telegram-bot/internal/types"
	"gas-tracker-telegram-bot/lib/helpers"
	"gas-tracker-telegram-bot/lib/translation"

	log "github.com/sirupsen/logrus"
)

// Renderer turns fee readings and alerts into MarkdownV2 messages.
type Renderer struct {
	limits     []config.GasLimit
	thresholds config.StatusThresholds
	now        func() time.Time
}

func NewRenderer(limits []config.GasLimit, thresholds config.StatusThresholds) *Renderer {
	return &Renderer{
		limits:     limits,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// TxCost converts a Gwei price and a gas limit into USD.
func TxCost(gwei float64, gasLimit int, ethPrice float64) float64 {
	return gwei * 1e-9 * float64(gasLimit) * ethPrice
}

// GasStatus classifies fee against the thresholds and returns a headline and an advice line.
func GasStatus(fee float64, t config.StatusThresholds) (string, string) {
	switch {
	case fee < t.Low:
		return translation.Translate("🟢 Gas is LOW"), translation.Translate("Good time to transact!")
	case fee < t.Normal:
		return translation.Translate("🟡 Gas is NORMAL"), translation.Translate("Standard network activity")
	case fee < t.Elevated:
		return translation.Translate("🟠 Gas is ELEVATED"), translation.Translate("Consider waiting if not urgent")
	default:
		return translation.Translate("🔴 Gas is HIGH"), translation.Translate("Wait if transaction is not urgent!")
	}
}

// Trend compares the standard price with the base fee.
func Trend(current, base float64) string {
	if base <= 0 {
		return translation.Translate("➡️ Stable")
	}

	diff := (current - base) / base * 100
	switch {
	case diff > 10:
		return translation.Translate("↗️ Rising Fast")
	case diff > 3:
		return translation.Translate("↗️ Rising")
	case diff < -10:
		return translation.Translate("↘️ Falling Fast")
	case diff < -3:
		return translation.Translate("↘️ Falling")
	default:
		return translation.Translate("➡️ Stable")
	}
}

func (r *Renderer) limit(key string) int {
	for _, l := range r.limits {
		if l.Key == key {
			return l.Units
		}
	}
	log.Warnf("unknown gas limit %q", key)
	return 0
}

// GasReport renders the full gas tracker message. A non-nil fetchErr renders the unavailable notice.
func (r *Renderer) GasReport(levels types.FeeLevels, fetchErr error, ethPrice float64) string {
	if fetchErr != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Unable to fetch gas data. Please try again later."))
	}

	headline, advice := GasStatus(levels.Standard, r.thresholds)

	var b strings.Builder
	b.WriteString(translation.Translate("⛽ *Ethereum Gas Tracker*\n\n"))
	b.WriteString(fmt.Sprintf("%s\n_%s_\n\n", helpers.EscapeMarkdownV2(headline), helpers.EscapeMarkdownV2(advice)))

	b.WriteString(translation.Translate(
		"*Current Gas Prices:*\n🐌 Low: %s Gwei\n⚡ Standard: %s Gwei\n🚀 Fast: %s Gwei\n\n",
		helpers.EscapeMarkdownV2(helpers.FormatFee(levels.Low)),
		helpers.EscapeMarkdownV2(helpers.FormatFee(levels.Standard)),
		helpers.EscapeMarkdownV2(helpers.FormatFee(levels.Fast)),
	))

	b.WriteString(translation.Translate("*💰 Transaction Costs \\(Standard\\):*\n"))
	for _, l := range r.limits {
		b.WriteString(fmt.Sprintf(
			"\\- %s: $%s\n",
			helpers.EscapeMarkdownV2(translation.Translate(l.Label)),
			helpers.EscapeMarkdownV2(helpers.FormatUSD(TxCost(levels.Standard, l.Units, ethPrice))),
		))
	}

	b.WriteString(translation.Translate(
		"\n*📊 Network Info:*\n\\- Base Fee: %s Gwei\n\\- Trend: %s\n\\- ETH Price: $%s\n",
		helpers.EscapeMarkdownV2(helpers.FormatFee(levels.BaseFee)),
		helpers.EscapeMarkdownV2(Trend(levels.Standard, levels.BaseFee)),
		helpers.EscapeMarkdownV2(helpers.FormatUSD(ethPrice)),
	))
	if levels.LastBlock != "" {
		b.WriteString(translation.Translate("\\- Block: %s\n", helpers.EscapeMarkdownV2(levels.LastBlock)))
	}

	b.WriteString(translation.Translate(
		"\n🕐 _Updated: %s_",
		helpers.EscapeMarkdownV2(r.now().UTC().Format("15:04:05")+" UTC"),
	))
	return b.String()
}
