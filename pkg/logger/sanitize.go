package logger

import (
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are query keys whose values never reach the logs.
var sensitiveParams = map[string]bool{
	"password": true,
	"email":    true,
	"username": true,
	"token":    true,
	"secret":   true,
	"provaid":  true,
}

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	// Mask username: keep first char, mask rest
	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	// Mask all but the TLD
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, redacted)
	}
	return slog.String(key, value)
}

// SanitizeQueryString returns rawQuery with the values of sensitive keys
// replaced. A query that cannot be parsed is redacted whole.
func SanitizeQueryString(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redacted
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		sensitive := sensitiveParams[strings.ToLower(k)]
		for _, v := range values[k] {
			if sensitive {
				v = redacted
			}
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}
