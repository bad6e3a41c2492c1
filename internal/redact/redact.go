// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. This keeps
// gift card codes, credentials and customer emails out of log output.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedCodePlaceholder       = "[REDACTED_CODE]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
)

// Precompiled regex patterns
var (
	// Gift card codes in XXXX-XXXX-XXXX form
	giftCardCodeRegex = regexp.MustCompile(`\b[A-Z2-9]{4}-[A-Z2-9]{4}-[A-Z2-9]{4}\b`)

	// Email addresses
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|mysql|db|database|connection)://[^@\s]+@`)

	// JWT tokens - the standard three-part base64url-encoded format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	patternPlaceholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{giftCardCodeRegex, RedactedCodePlaceholder},
		{emailRegex, RedactedEmailPlaceholder},
		{dbConnRegex, RedactedCredentialPlaceholder},
		{jwtTokenRegex, RedactedCredentialPlaceholder},
	}
)

// String redacts sensitive values from the given string.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, p := range patternPlaceholders {
		s = p.pattern.ReplaceAllString(s, p.placeholder)
	}
	return s
}

// Error redacts sensitive values from an error's message.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Code masks a gift card code for logging, keeping only the last group
// visible (e.g. "****-****-XK42"). Codes that don't match the expected
// shape are fully redacted.
func Code(code string) string {
	if len(code) != 14 || !giftCardCodeRegex.MatchString(code) {
		return RedactedCodePlaceholder
	}
	return "****-****-" + code[10:]
}
