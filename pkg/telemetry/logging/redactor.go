package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"congress-hq/dashboard/pkg/config"
)

// Redacted replaces sensitive values.
const Redacted = "***"

// Redactor removes credentials from log attributes.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternPassword       = "password"
	PatternBearerToken    = "bearer_token"
	PatternURLCredentials = "url_credentials"
	PatternSecretAssign   = "secret_assignment"
)

var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternPassword, `(?i)(password|passwd|pwd)(\s*[:=]\s*)[^\s,;&]+`, "$1$2***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternURLCredentials, `([a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+):[^@\s]+@`, "$1:***@"},
	{PatternSecretAssign, `(?i)(secret|token|api[-_]?key)(\s*[:=]\s*)[^\s,;&]+`, "$1$2***"},
}

// sensitiveKeys are attribute and map keys whose values are always hidden.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"auth", "credential", "private_key",
}

// NewRedactor creates a redactor with the built-in patterns plus custom
// ones. An invalid custom pattern is an error.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}
	return r, nil
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr redacts an attribute. Values under a sensitive key are replaced
// entirely, string values are pattern-matched, groups are walked and string
// maps (data source configuration) are copied with sensitive entries hidden.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]slog.Attr, len(group))
		for i, g := range group {
			out[i] = r.RedactAttr(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindAny:
		if m, ok := v.Any().(map[string]string); ok {
			return slog.Any(a.Key, r.RedactMap(m))
		}
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// RedactMap returns a copy of m with sensitive values hidden.
func (r *Redactor) RedactMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if IsSensitiveKey(k) {
			out[k] = Redacted
			continue
		}
		out[k] = r.RedactString(v)
	}
	return out
}

// Patterns returns the pattern names in a stable order.
func (r *Redactor) Patterns() []string {
	names := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		names[i] = p.name
	}
	sort.Strings(names)
	return names
}

// IsSensitiveKey reports whether a key names a credential.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
