// Package redact strips sensitive fragments from strings before they reach
// logs or error responses: connection strings, API keys, file paths, and raw
// SQL. Messages stay readable; only the dangerous spans are replaced.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredential = "[REDACTED_CREDENTIAL]"
	RedactedKey        = "[REDACTED_KEY]"
	RedactedPath       = "[REDACTED_PATH]"
	RedactedSQL        = "[REDACTED_SQL]"
)

var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Database connection strings with embedded credentials
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), RedactedCredential},
	// API keys and tokens
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKey},
	// Unix file paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPath},
	// SQL statements leaking schema details
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)[\s\w,*()='"$]*`), RedactedSQL},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
