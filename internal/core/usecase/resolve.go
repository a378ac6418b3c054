package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/scoring"
)

type MatchTier string

const (
	MatchExact      MatchTier = "exact"
	MatchNormalized MatchTier = "normalized"
	MatchSubstring  MatchTier = "substring"
	MatchFallback   MatchTier = "fallback"
)

// minFuzzyTokenLen guards the substring tier against short tokens such as
// "pdf" or "doc" matching unrelated keys.
const minFuzzyTokenLen = 4

type categoryMatcher struct {
	tier  MatchTier
	match func(token string, keys []string) (string, bool)
}

var categoryMatchers = []categoryMatcher{
	{tier: MatchExact, match: exactCategoryMatch},
	{tier: MatchNormalized, match: normalizedCategoryMatch},
	{tier: MatchSubstring, match: substringCategoryMatch},
}

// ResolveCategory maps a raw backend token to a catalog key. Matchers run in
// order and the first hit wins; no hit yields the catalog fallback.
func ResolveCategory(token string, catalog domain.Catalog) (string, MatchTier) {
	keys := catalog.Keys()
	for _, m := range categoryMatchers {
		if key, ok := m.match(token, keys); ok {
			return key, m.tier
		}
	}
	return catalog.Fallback, MatchFallback
}

func exactCategoryMatch(token string, keys []string) (string, bool) {
	for _, key := range keys {
		if key == token {
			return key, true
		}
	}
	return "", false
}

func normalizedCategoryMatch(token string, keys []string) (string, bool) {
	normalized := normalizeToken(token)
	if normalized == "" {
		return "", false
	}
	for _, key := range keys {
		if normalizeToken(key) == normalized {
			return key, true
		}
	}
	return "", false
}

func substringCategoryMatch(token string, keys []string) (string, bool) {
	normalized := normalizeToken(token)
	if utf8.RuneCountInString(normalized) <= minFuzzyTokenLen {
		return "", false
	}
	for _, key := range keys {
		nk := normalizeToken(key)
		if strings.Contains(nk, normalized) || strings.Contains(normalized, nk) {
			return key, true
		}
	}
	return "", false
}

func normalizeToken(s string) string {
	return strings.TrimSpace(scoring.Normalize(s))
}
