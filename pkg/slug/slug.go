package slug

import (
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
	separator string
}

// MaxLength truncates the generated slug to at most n runes.
// Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator overrides the default "-" separator.
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// Make derives a URL-safe identifier from s: lowercased, with every run
// of non-alphanumeric characters collapsed into a single separator.
// Leading and trailing separators are stripped.
//
//	slug.Make("Acme Corp.") // "acme-corp"
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	count := 0

	for _, r := range s {
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}

		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteString(cfg.separator)
			}
			pendingSep = false
			b.WriteRune(r)
			count++
			continue
		}

		// Any non-alphanumeric run collapses into one separator.
		pendingSep = true
	}

	return b.String()
}
