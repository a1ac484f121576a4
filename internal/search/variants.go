// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package search

import (
	"strings"

	"github.com/aurastream/corehub/internal/cache"
)

// noiseWords is the small domain word set stripped when generating the
// noise-free variant.
var noiseWords = []string{
	"song", "songs", "movie", "album", "lyrics",
	"official", "audio", "music", "theme", "bgm", "ost",
}

// languageNames is the set of known language names recognized as a
// language hint inside a query token.
var languageNames = []string{
	"hindi", "english", "punjabi", "tamil", "telugu",
	"marathi", "gujarati", "bengali", "kannada", "malayalam",
	"urdu", "bhojpuri", "haryanvi", "rajasthani", "odia",
	"assamese",
}

// noiseMatcher and languageMatcher scan a query token in one pass over an
// Aho-Corasick automaton rather than a per-token map lookup, so the set of
// recognized words can grow without changing the lookup cost per token.
// noiseMatcher also strips language names: a language hint in the query is
// still noise for the purpose of the noise-free variant.
var (
	noiseMatcher    = cache.NewPatternMatcherFromSlice(append(append([]string{}, noiseWords...), languageNames...), true)
	languageMatcher = cache.NewPatternMatcherFromSlice(languageNames, true)
)

// exactTokenMatch reports whether pm has a pattern equal to the whole
// token, not merely a substring of it (so "toast" doesn't match "ost").
func exactTokenMatch(pm *cache.PatternMatcher, token string) bool {
	for _, m := range pm.Match(token) {
		if m.Position == 0 && len(m.Pattern) == len(token) {
			return true
		}
	}
	return false
}

// Normalize lowercases, collapses internal whitespace, and trims a query.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// GenerateVariants produces an ordered, deduped list of at most 4 query
// rewrites, broadening upstream recall while preserving precedence:
// [original, tokens-noise_words, tokens[:-1], tokens[:2], tokens[0],
// leave-one-out variants, shortened-by-1-char variant for tokens >= 6].
func GenerateVariants(normalized string) []string {
	if normalized == "" {
		return nil
	}
	tokens := strings.Fields(normalized)

	candidates := []string{normalized}

	if noNoise := stripNoiseWords(tokens); noNoise != "" && noNoise != normalized {
		candidates = append(candidates, noNoise)
	}

	if len(tokens) > 1 {
		candidates = append(candidates, strings.Join(tokens[:len(tokens)-1], " "))
	}
	if len(tokens) > 2 {
		candidates = append(candidates, strings.Join(tokens[:2], " "))
	}
	if len(tokens) > 0 {
		candidates = append(candidates, tokens[0])
	}

	for i := range tokens {
		if len(tokens) < 2 {
			break
		}
		loo := make([]string, 0, len(tokens)-1)
		loo = append(loo, tokens[:i]...)
		loo = append(loo, tokens[i+1:]...)
		if v := strings.Join(loo, " "); v != "" {
			candidates = append(candidates, v)
		}
	}

	for i, t := range tokens {
		if len(t) < 6 {
			continue
		}
		shortened := make([]string, len(tokens))
		copy(shortened, tokens)
		shortened[i] = t[:len(t)-1]
		candidates = append(candidates, strings.Join(shortened, " "))
	}

	return dedupeOrdered(candidates, 4)
}

func stripNoiseWords(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if exactTokenMatch(noiseMatcher, t) {
			continue
		}
		kept = append(kept, t)
	}
	// Empty variant falls back to original: an all-noise query must still
	// be attempted upstream.
	if len(kept) == 0 {
		return strings.Join(tokens, " ")
	}
	return strings.Join(kept, " ")
}

func dedupeOrdered(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, max)
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
		if len(out) >= max {
			break
		}
	}
	return out
}

// LanguageHint reports whether query tokens contain a known language
// name, and which one.
func LanguageHint(tokens []string) (string, bool) {
	for _, t := range tokens {
		if exactTokenMatch(languageMatcher, t) {
			return t, true
		}
	}
	return "", false
}
