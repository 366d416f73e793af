// Package logging keeps secrets out of log output. Config values like
// the Telegram bot token and API keys travel through module wiring and
// would otherwise show up verbatim in error messages.
package logging

import (
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches config keys that likely hold secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|key|api_key|credential)`)

// Redactor replaces secret values in strings with a placeholder. It
// combines regex patterns for known key formats with literal values
// harvested from the loaded configuration. Safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with patterns for the
// credential formats this app handles.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: defaultPatterns(),
	}
}

// AddLiteral adds a literal secret value that should be redacted on
// sight. Empty and very short strings are ignored — redacting them
// would mangle ordinary log text.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < 8 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// CollectSecrets walks the raw module configs and registers every
// string value under a secret-looking key as a literal.
func (r *Redactor) CollectSecrets(modules map[string]yaml.Node) {
	for _, node := range modules {
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			continue
		}
		r.collectFromMap(m)
	}
}

func (r *Redactor) collectFromMap(m map[string]any) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if secretKeyPattern.MatchString(k) {
				r.AddLiteral(val)
			}
		case map[string]any:
			r.collectFromMap(val)
		}
	}
}

// Redact replaces all known secret patterns and literal values in s
// with RedactPlaceholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	return s
}

// defaultPatterns returns compiled regexes for credential formats that
// can reach the logs: OpenAI keys, Notion integration tokens, and
// Telegram bot tokens.
func defaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// OpenAI: sk-... (at least 20 chars after prefix)
		regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
		// Notion internal integration tokens
		regexp.MustCompile(`(secret_|ntn_)[a-zA-Z0-9]{20,}`),
		// Telegram bot tokens: <bot_id>:<35-char hash>
		regexp.MustCompile(`\d{8,10}:[A-Za-z0-9_-]{35}`),
	}
}
