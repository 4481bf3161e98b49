// Package redact scrubs sensitive values from strings before they reach
// logs or API error responses. Analyzed log lines routinely embed
// connection strings, tokens, and addresses; anything echoed back in an
// error message passes through here first.
package redact

import "regexp"

// Redaction placeholders substituted for matched content.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
)

// Precompiled patterns, applied in order. The JWT pattern runs before the
// bearer pattern so a bare token and a Bearer header redact consistently.
var rules = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|mongodb|redis|amqp)://[^@\s]+@`), CredentialPlaceholder},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), TokenPlaceholder},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]+=*`), TokenPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|secret|access[_-]?key|auth[_-]?token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:]\s*['"]?)[^'"&\s]+`), CredentialPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, rule := range rules {
		result = rule.pattern.ReplaceAllString(result, rule.placeholder)
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
