package extract

import (
	"net/mail"
	"regexp"
	"strings"
)

// maxFieldLength rejects captures that ran past the field into unrelated
// trailing text
const maxFieldLength = 200

var bareAddressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ExtractField scans text for the first candidate label that yields a usable
// "label: value" match. Labels are tried in order; matching is
// case-insensitive and a value never spans more than one line. Returns ""
// when no candidate produces an accepted value.
func ExtractField(text string, labels []string) string {
	for _, label := range labels {
		if label == "" {
			continue
		}

		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[ \t]*:?[ \t]*([^\r\n]+)`)
		matches := pattern.FindStringSubmatch(text)
		if len(matches) < 2 {
			continue
		}

		value := strings.TrimSpace(matches[1])
		value = strings.TrimLeft(value, ":-*> \t")
		value = strings.TrimSpace(value)

		if value == "" || len(value) > maxFieldLength {
			continue
		}

		return value
	}

	return ""
}

// SenderAddress extracts the bare address from a raw From header, which may
// embed a display name ("Jane Okoro <jane@x.com>")
func SenderAddress(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return ""
	}

	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}

	return bareAddressPattern.FindString(sender)
}
