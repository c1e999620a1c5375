package redact

import (
	"fmt"
	"log"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	authHeaderRe  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	bearerRe      = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	apiKeyValueRe = regexp.MustCompile(`(?i)(api[_-]?key(?:s)?\s*[:=]\s*)([A-Za-z0-9._\-+/=]+)`)
	openAIKeyRe   = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}\b`)
	urlRe         = regexp.MustCompile(`https?://[^\s"'<>]+`)
	tokenishKeyRe = regexp.MustCompile(`(?i)(key|token|secret)\s*[:=]\s*([A-Za-z0-9._\-+/=]{6,})`)
)

// String redacts known secret patterns from free-form strings.
func String(s string) string {
	if s == "" {
		return s
	}

	out := s
	out = authHeaderRe.ReplaceAllString(out, "${1}[REDACTED]")
	out = bearerRe.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyValueRe.ReplaceAllString(out, "${1}[REDACTED]")
	out = openAIKeyRe.ReplaceAllString(out, "sk-[REDACTED]")
	out = tokenishKeyRe.ReplaceAllStringFunc(out, func(m string) string {
		if strings.Contains(m, "[REDACTED]") {
			return m
		}
		matches := tokenishKeyRe.FindStringSubmatch(m)
		if len(matches) < 3 {
			return m
		}
		return matches[1] + "=[REDACTED]"
	})
	out = urlRe.ReplaceAllStringFunc(out, redactURL)
	for strings.Contains(out, "[REDACTED][REDACTED]") {
		out = strings.ReplaceAll(out, "[REDACTED][REDACTED]", "[REDACTED]")
	}
	return out
}

// Sprintf formats like fmt.Sprintf and redacts the result.
func Sprintf(format string, args ...interface{}) string {
	return String(fmt.Sprintf(format, args...))
}

// Logf prints a redacted log line.
func Logf(format string, args ...interface{}) {
	log.Print(Sprintf(format, args...))
}

// Fatalf prints a redacted fatal log line.
func Fatalf(format string, args ...interface{}) {
	log.Fatal(Sprintf(format, args...))
}

// redactURL keeps scheme, host and the last path element; query strings can
// carry session or participant identifiers and are always dropped.
func redactURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "[REDACTED_URL]"
	}

	host := u.Host
	if strings.HasSuffix(trimmed, "/") {
		return fmt.Sprintf("%s://%s/[REDACTED_PATH]", u.Scheme, host)
	}

	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" || base == "" {
		return fmt.Sprintf("%s://%s/[REDACTED_PATH]", u.Scheme, host)
	}
	return fmt.Sprintf("%s://%s/%s", u.Scheme, host, base)
}
