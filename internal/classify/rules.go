package classify

import (
	"regexp"
	"slices"
	"strings"
)

// input is what a rule sees: a lowercased text blob and the record's
// structured tags.
type input struct {
	text string
	tags map[string]string
}

// rule pairs an outcome with the predicate that selects it. Single-valued
// fields take the first matching rule; tag sets take every match.
type rule[T any] struct {
	value T
	when  func(in input) bool
}

// re matches when every pattern matches the input text.
func re(patterns ...string) func(input) bool {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return func(in input) bool {
		for _, r := range compiled {
			if !r.MatchString(in.text) {
				return false
			}
		}
		return true
	}
}

// contains matches when the input text contains any of the substrings.
func contains(subs ...string) func(input) bool {
	return func(in input) bool {
		for _, s := range subs {
			if strings.Contains(in.text, s) {
				return true
			}
		}
		return false
	}
}

// tagIs matches when tag key (compared lowercase) equals one of vals.
func tagIs(key string, vals ...string) func(input) bool {
	return func(in input) bool {
		v := strings.ToLower(in.tags[key])
		return v != "" && slices.Contains(vals, v)
	}
}

// anyOf matches when any predicate matches.
func anyOf(preds ...func(input) bool) func(input) bool {
	return func(in input) bool {
		for _, p := range preds {
			if p(in) {
				return true
			}
		}
		return false
	}
}

// allOf matches when every predicate matches.
func allOf(preds ...func(input) bool) func(input) bool {
	return func(in input) bool {
		for _, p := range preds {
			if !p(in) {
				return false
			}
		}
		return true
	}
}

func firstMatch[T any](rules []rule[T], in input) (T, bool) {
	for _, r := range rules {
		if r.when(in) {
			return r.value, true
		}
	}
	var zero T
	return zero, false
}

func allMatches[T comparable](rules []rule[T], in input) []T {
	out := []T{}
	for _, r := range rules {
		if r.when(in) && !slices.Contains(out, r.value) {
			out = append(out, r.value)
		}
	}
	return out
}

// joinLower joins the non-empty parts with spaces and lowercases the result.
func joinLower(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}
