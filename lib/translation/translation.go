package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Configure loads the catalogue for lang from dir; missing catalogues fall back to the message ids.
func Configure(dir, lang string) {
	gotext.Configure(dir, strings.ToLower(lang), "default")
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}

// TranslateN picks the singular or plural form for n.
func TranslateN(msgID, plural string, n int, vars ...interface{}) string {
	return gotext.GetN(msgID, plural, n, vars...)
}
