// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package recommend

import (
	"regexp"
	"strings"
)

var (
	bracketedRe = regexp.MustCompile(`[\(\[][^\)\]]*[\)\]]`)
	decoratorRe = regexp.MustCompile(`(?i)\b(remix|version|live|slowed|reverb|karaoke|instrumental|lofi|cover)\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// canonicalTitle strips parentheses, brackets, and version/mix decorator
// keywords so duplicate detection is robust to "(Remix)", "- Slowed +
// Reverb", etc.
func canonicalTitle(name string) string {
	s := strings.ToLower(name)
	s = bracketedRe.ReplaceAllString(s, " ")
	s = decoratorRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// isTitleSupersetOrEqual reports whether candidate's canonical title
// equals or is a superset of (contains all words of) current's.
func isTitleSupersetOrEqual(candidate, current string) bool {
	if candidate == current {
		return true
	}
	currentWords := strings.Fields(current)
	if len(currentWords) == 0 {
		return false
	}
	for _, w := range currentWords {
		if !strings.Contains(candidate, w) {
			return false
		}
	}
	return true
}
