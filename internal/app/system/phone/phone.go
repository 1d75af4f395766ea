// internal/app/system/phone/phone.go
package phone

import (
	"strings"
	"unicode"
)

// DefaultPrefix is the country code assumed when a stored number has none.
const DefaultPrefix = "+55"

// MaxDigits caps the national number (two-digit area code plus nine digits).
const MaxDigits = 11

// CountryCode is one selectable calling prefix.
type CountryCode struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// CountryCodes lists the prefixes offered on the member form.
var CountryCodes = []CountryCode{
	{Code: "+55", Label: "Brasil"},
	{Code: "+1", Label: "EUA"},
	{Code: "+351", Label: "Portugal"},
	{Code: "+39", Label: "Itália"},
	{Code: "+33", Label: "França"},
}

// Digits returns the ASCII digits of s, at most MaxDigits of them.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			continue
		}
		if b.Len() == MaxDigits {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Format renders the national number progressively:
//
//	"1"           -> "(1"
//	"11999"       -> "(11) 999"
//	"11999998888" -> "(11) 99999-8888"
//
// Non-digits are ignored and anything past MaxDigits is dropped.
func Format(s string) string {
	d := Digits(s)
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// Compose joins a prefix and a national number into the stored form
// "<prefix> <formatted body>". An empty body yields "".
func Compose(prefix, body string) string {
	formatted := Format(body)
	if formatted == "" {
		return ""
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + " " + formatted
}

// Split reverses Compose. Only strings containing "+" carry a prefix; for
// anything else the whole string is the body and the prefix is DefaultPrefix.
func Split(composed string) (prefix, body string) {
	if strings.Contains(composed, "+") {
		if p, rest, ok := strings.Cut(composed, " "); ok {
			return p, rest
		}
	}
	return DefaultPrefix, composed
}
