package logger

import (
	"net/url"
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e******.com")
func SanitizedEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	// Keep the first character of the local part
	if len(username) > 1 {
		username = username[:1] + strings.Repeat("*", len(username)-1)
	}

	// Keep only the TLD of the domain
	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = strings.Repeat("*", len(labels[i]))
	}

	return username + "@" + strings.Join(labels, ".")
}

var sensitiveParams = map[string]struct{}{
	"email":       {},
	"password":    {},
	"newpassword": {},
	"otp":         {},
	"code":        {},
	"token":       {},
	"api_key":     {},
	"apikey":      {},
}

// SanitizeQueryString reports whether rawQuery carries a sensitive parameter,
// in which case the whole query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable input is redacted rather than logged
		return true
	}

	for key := range values {
		if _, ok := sensitiveParams[strings.ToLower(key)]; ok {
			return true
		}
	}
	return false
}
