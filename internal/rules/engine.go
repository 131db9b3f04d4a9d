// Package rules suggests categories for uncategorized transactions by
// scanning ordered pattern rules against the transaction text.
package rules

import (
	"regexp"
	"strings"

	"bilancio/internal/core"
)

// matcher tests a prepared pattern against a lower-cased haystack.
type matcher interface {
	matches(hay string) bool
}

type substringMatcher struct {
	pattern string // lower-cased at compile time
}

func (m substringMatcher) matches(hay string) bool {
	return strings.Contains(hay, m.pattern)
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) matches(hay string) bool {
	return m.re.MatchString(hay)
}

// neverMatcher stands in for a regex that failed to compile. The broken
// rule is skipped on every evaluation instead of failing the caller.
type neverMatcher struct{}

func (neverMatcher) matches(string) bool { return false }

type compiledRule struct {
	category string
	m        matcher
}

// Engine scans rules in snapshot order and returns the first match.
// Compile once per snapshot; the engine itself is immutable.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the active, non-deleted rules, preserving their
// snapshot order. Unknown rule kinds never match.
func NewEngine(rules []core.Rule) *Engine {
	e := &Engine{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if r.Deleted || !r.Active {
			continue
		}
		e.rules = append(e.rules, compiledRule{category: r.Category, m: compile(r)})
	}
	return e
}

func compile(r core.Rule) matcher {
	switch r.Kind {
	case core.KindSubstring:
		return substringMatcher{pattern: strings.ToLower(r.Pattern)}
	case core.KindRegex:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return neverMatcher{}
		}
		return regexMatcher{re: re}
	default:
		return neverMatcher{}
	}
}

// Classify suggests a category from a transaction's note and payer
// label. The haystack is the lower-cased concatenation of both; regex
// patterns run as given against it. Returns false when no rule matches.
// The suggestion never overrides an explicit user category.
func (e *Engine) Classify(note, payer string) (string, bool) {
	hay := strings.ToLower(note + " " + payer)
	for _, r := range e.rules {
		if r.m.matches(hay) {
			return r.category, true
		}
	}
	return "", false
}
