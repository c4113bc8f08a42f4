package services

import (
	"regexp"
	"strings"
)

const (
	countryCode    = "55"
	whatsappDomain = "@s.whatsapp.net"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone canonicalizes a raw phone identifier into the gateway
// addressing format: digits only, country-code prefixed, routing domain
// suffixed. Best-effort, never fails.
func NormalizePhone(telefone string) string {
	digits := nonDigits.ReplaceAllString(telefone, "")
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits + whatsappDomain
}
