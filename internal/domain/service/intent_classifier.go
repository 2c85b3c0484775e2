package service

import (
	"regexp"
	"strings"

	"github.com/bibbank/origination/internal/domain/valueobject"
)

// IntentRule pairs an intent tag with a predicate over the normalised
// utterance. Rules are evaluated in order; the first match wins.
type IntentRule struct {
	Tag   valueobject.Intent
	Match func(text string) bool
}

// ClassifyIntent resolves an utterance against a stage's ordered rule set.
// The utterance is lower-cased and trimmed before matching. When no rule
// matches, the fallback intent is returned.
func ClassifyIntent(text string, rules []IntentRule, fallback valueobject.Intent) valueobject.Intent {
	normalised := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range rules {
		if rule.Match(normalised) {
			return rule.Tag
		}
	}
	return fallback
}

// ContainsAny builds a predicate matching utterances that contain at least
// one of the given phrases.
func ContainsAny(phrases ...string) func(string) bool {
	return func(text string) bool {
		for _, p := range phrases {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
}

// MatchesPattern builds a predicate from a compiled regular expression.
func MatchesPattern(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// AnyOf combines predicates with OR semantics.
func AnyOf(predicates ...func(string) bool) func(string) bool {
	return func(text string) bool {
		for _, p := range predicates {
			if p(text) {
				return true
			}
		}
		return false
	}
}
