// Package redact masks personally identifying fields before candidate data
// leaves the service. Redaction is idempotent and never mutates its input.
package redact

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const placeholder = "[redacted]"

var strictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML from free-text resume fields (headlines, summaries)
// so scraped markup never reaches outbound messages.
func Text(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// Email keeps the first character of the local part and the full domain:
// "jane.doe@example.com" -> "j***@example.com".
func Email(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return placeholder
	}
	return email[:1] + "***" + email[at:]
}

// Phone keeps the last four digits: "+1 (555) 867-5309" -> "***-5309".
// Numbers too short to keep a meaningful suffix are fully masked.
func Phone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) <= 4 {
		return placeholder
	}
	return "***-" + string(digits[len(digits)-4:])
}

// Location drops street-level detail, keeping only the broadest component:
// "123 Main St, Springfield, IL" -> "IL". Single-component locations pass
// through unchanged since they are already region-level.
func Location(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	comma := strings.LastIndex(location, ",")
	if comma < 0 {
		return location
	}
	return strings.TrimSpace(location[comma+1:])
}

// Address fully masks street addresses.
func Address(address string) string {
	if strings.TrimSpace(address) == "" {
		return ""
	}
	return placeholder
}
