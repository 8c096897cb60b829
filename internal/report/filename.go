package report

import (
	"strings"
	"unicode"
)

// Filename builds report_<app>_<user>.pdf with every run of characters other
// than letters and digits collapsed to a single underscore.
func Filename(appName, userName string) string {
	app := sanitize(strings.ToLower(appName))
	user := sanitize(userName)
	if user == "" {
		user = "usuario"
	}
	return "report_" + app + "_" + user + ".pdf"
}

func sanitize(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}
