// Package filter provides the literal substring checks applied to generated
// replies before they are posted, and the length trimming shared by every
// outbound message.
package filter

import (
	"strings"
	"unicode/utf8"
)

// Default rule sets. Matching is literal and case-sensitive.
var (
	DefaultDenylist = []string{
		"inappropriate word 1",
		"inappropriate word 2",
		"nonsense",
	}
	DefaultLowQualityPhrases = []string{
		"I don't know",
		"I don't understand",
		"nonsense",
	}
)

// DefaultMinLength is the shortest reply considered informative.
const DefaultMinLength = 10

// Rule identifies which check rejected a text.
type Rule string

const (
	RuleNone       Rule = ""
	RuleDenylist   Rule = "denylist"
	RuleTooShort   Rule = "too_short"
	RuleLowQuality Rule = "low_quality_phrase"
)

// Verdict is the outcome of Check. It never carries the inspected text so it
// is safe to log.
type Verdict struct {
	Appropriate bool
	HighQuality bool
	Rule        Rule
}

// OK reports whether the text passed both checks.
func (v Verdict) OK() bool { return v.Appropriate && v.HighQuality }

// Filter holds the rule sets. The zero value accepts every string.
type Filter struct {
	Denylist          []string
	LowQualityPhrases []string
	MinLength         int
}

// Option configures a Filter.
type Option func(*Filter)

// WithDenylist replaces the denylist.
func WithDenylist(words ...string) Option {
	return func(f *Filter) { f.Denylist = append([]string(nil), words...) }
}

// WithLowQualityPhrases replaces the low-information phrase list.
func WithLowQualityPhrases(phrases ...string) Option {
	return func(f *Filter) { f.LowQualityPhrases = append([]string(nil), phrases...) }
}

// WithMinLength sets the minimum length for IsHighQuality.
func WithMinLength(n int) Option {
	return func(f *Filter) { f.MinLength = n }
}

// New returns a filter seeded with the default rules and then modified by opts.
func New(opts ...Option) *Filter {
	f := &Filter{
		Denylist:          append([]string(nil), DefaultDenylist...),
		LowQualityPhrases: append([]string(nil), DefaultLowQualityPhrases...),
		MinLength:         DefaultMinLength,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFilter = New()

// Default returns the shared filter with the default rules.
func Default() *Filter { return defaultFilter }

// IsAppropriate reports whether text contains none of the denylisted substrings.
func (f *Filter) IsAppropriate(text string) bool {
	return !containsAny(text, f.Denylist)
}

// IsHighQuality reports whether text is at least MinLength characters long
// and contains none of the low-information phrases.
func (f *Filter) IsHighQuality(text string) bool {
	if utf8.RuneCountInString(text) < f.MinLength {
		return false
	}
	return !containsAny(text, f.LowQualityPhrases)
}

// Check runs both checks and names the first rule that failed.
func (f *Filter) Check(text string) Verdict {
	v := Verdict{
		Appropriate: f.IsAppropriate(text),
		HighQuality: f.IsHighQuality(text),
	}
	switch {
	case !v.Appropriate:
		v.Rule = RuleDenylist
	case utf8.RuneCountInString(text) < f.MinLength:
		v.Rule = RuleTooShort
	case !v.HighQuality:
		v.Rule = RuleLowQuality
	}
	return v
}

// IsAppropriate applies the default denylist.
func IsAppropriate(text string) bool { return defaultFilter.IsAppropriate(text) }

// IsHighQuality applies the default quality rules.
func IsHighQuality(text string) bool { return defaultFilter.IsHighQuality(text) }

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
