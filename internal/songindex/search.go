// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package songindex

import (
	"sort"
	"strings"

	"github.com/aurastream/corehub/internal/catalog"
)

// Result is a scored candidate produced by the index's own matcher. The
// Smart Search Engine treats these identically to upstream-sourced
// candidates once SourceWeight for "local-index" (20) is folded in.
type Result struct {
	Song  catalog.Song
	Tier  Tier
	Score float64
}

// SourceWeightLocal is the sourceWeight bonus applied to local-index hits.
const SourceWeightLocal = 20.0

// SearchLocal returns candidate Songs whose precomputed fields pass the
// same tiered match rules as the Smart Search Engine's upstream scoring,
// without issuing any I/O. Capped at MaxLocalResults.
func (idx *Index) SearchLocal(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	compactQuery := compact(query)
	queryTokens := strings.Fields(query)

	entries := idx.snapshot()
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		tier, base, ok := ClassifyMatch(e.Name, e.CompactName, e.Haystack, e.CompactHaystack, e.HaystackTokens, query, compactQuery, queryTokens)
		if !ok {
			continue
		}
		results = append(results, Result{Song: e.Song, Tier: tier, Score: base + SourceWeightLocal})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Tier != results[j].Tier {
			return results[i].Tier < results[j].Tier
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > MaxLocalResults {
		results = results[:MaxLocalResults]
	}
	return results
}

// CountTiered counts results whose tier is EXACT, STARTS_WITH, or
// CONTAINS — used by the Smart Search Engine's short-circuit rule.
func CountTiered(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Tier <= TierContains {
			n++
		}
	}
	return n
}
