// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package recommend

import (
	"context"

	"github.com/aurastream/corehub/internal/profile"
)

const maxSeedQueries = 15

// buildSeedQueries builds the ≤15 seed query set in priority order:
// favorite artists (≤5), top-played artists (≤5), recent search queries
// (≤5). If fewer than 3 were found, recently-played artists are added.
// If still empty, "Top <lang> songs" per preferred language (≤3). If
// still empty, "Top Hindi songs".
func (g *Generator) buildSeedQueries(ctx context.Context, prefs profile.Preferences, recentPlayArtists []string) []string {
	var seeds []string

	favorites := prefs.FavoriteArtists
	if len(favorites) > 5 {
		favorites = favorites[:5]
	}
	for _, a := range favorites {
		seeds = append(seeds, a.Name)
	}

	topArtists, err := g.store.TopArtistPlayCounts(ctx, prefs.UID, 5)
	if err == nil {
		count := 0
		for artist := range topArtists {
			if count >= 5 {
				break
			}
			seeds = append(seeds, artist)
			count++
		}
	}

	searches, err := g.store.RecentEvents(ctx, prefs.UID, profile.ActivitySearch, 5)
	if err == nil {
		for _, e := range searches {
			if e.Query != "" {
				seeds = append(seeds, e.Query)
			}
		}
	}

	if len(seeds) < 3 {
		for _, artist := range recentPlayArtists {
			seeds = append(seeds, artist)
		}
	}

	if len(seeds) == 0 {
		langs := prefs.Languages
		if len(langs) > 3 {
			langs = langs[:3]
		}
		for _, lang := range langs {
			seeds = append(seeds, "Top "+lang+" songs")
		}
	}

	if len(seeds) == 0 {
		seeds = []string{"Top Hindi songs"}
	}

	if len(seeds) > maxSeedQueries {
		seeds = seeds[:maxSeedQueries]
	}
	return dedupe(seeds)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
