// Package security provides input validation, log sanitization and
// sensitive data masking.
package security

import (
	"net/http"
	"strings"
	"unicode"
)

// DefaultLogLength is how many characters SanitizeForLog keeps.
const DefaultLogLength = 200

// redacted replaces masked values.
const redacted = "[REDACTED]"

// SanitizeForLog makes untrusted text safe to log.
// It prevents log injection by:
// - Escaping newlines, carriage returns and tabs
// - Removing other control characters
// - Truncating to DefaultLogLength characters
func SanitizeForLog(s string) string {
	return SanitizeForLogWithLength(s, DefaultLogLength)
}

// SanitizeForLogWithLength sanitizes a string for logging with a custom max length.
func SanitizeForLogWithLength(s string, maxLen int) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(min(len(s), maxLen+10))

	count := 0
	for _, r := range s {
		if count >= maxLen {
			b.WriteString("...")
			break
		}

		switch r {
		case '\n':
			b.WriteString("\\n")
			count += 2
		case '\r':
			b.WriteString("\\r")
			count += 2
		case '\t':
			b.WriteString("\\t")
			count += 2
		default:
			if !unicode.IsControl(r) {
				b.WriteRune(r)
				count++
			}
		}
	}

	return b.String()
}

// sensitiveHeaders are HTTP header names that carry credentials.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
}

// sensitiveFieldPatterns mark a header or key as sensitive when contained in its name.
var sensitiveFieldPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
}

// MaskSensitiveHeaders returns a copy of headers with credential values masked.
func MaskSensitiveHeaders(headers http.Header) http.Header {
	if headers == nil {
		return nil
	}

	masked := make(http.Header, len(headers))
	for key, values := range headers {
		if isSensitiveHeader(key) {
			masked[key] = []string{redacted}
		} else {
			masked[key] = append([]string(nil), values...)
		}
	}
	return masked
}

// MaskSecret hides all but the last four characters of a credential.
// Short secrets are fully masked; an empty secret stays empty.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return redacted
	default:
		return "****" + s[len(s)-4:]
	}
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	if sensitiveHeaders[lower] {
		return true
	}
	return isSensitiveKey(lower)
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveFieldPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
