package helpers

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{"\\", ".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatGwei prints a Gwei amount with as many decimals as it needs ("10", "9.5").
func FormatGwei(gwei float64) string {
	return strconv.FormatFloat(gwei, 'f', -1, 64)
}

// FormatFee prints a fee reading with two decimals.
func FormatFee(gwei float64) string {
	return strconv.FormatFloat(gwei, 'f', 2, 64)
}

// FormatUSD prints an amount with two decimals and a comma thousand separator.
func FormatUSD(amount float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.2f", amount)
}
