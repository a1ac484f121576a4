// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package catalog

import "strings"

// rawPrimarySong is the primary provider's song shape: nested artists and
// tagged URL arrays already present.
type rawPrimarySong struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Year     string `json:"year"`
	Duration string `json:"duration"`
	Album    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"album"`
	Artists struct {
		Primary []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"primary"`
	} `json:"artists"`
	Image []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"image"`
	DownloadURL []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"downloadUrl"`
	PlayCount string `json:"playCount"`
	HasLyrics string `json:"hasLyrics"`
	Explicit  bool   `json:"explicitContent"`
}

// fromPrimary normalizes a primary-provider record. The primary provider's
// shape is already close to the target Song; this mostly flattens optional
// numeric-as-string fields.
func fromPrimary(r rawPrimarySong) (Song, bool) {
	id := strings.TrimSpace(r.ID)
	name := strings.TrimSpace(r.Name)
	if id == "" || name == "" {
		return Song{}, false
	}

	s := Song{
		ID:       id,
		Name:     name,
		Language: strings.ToLower(strings.TrimSpace(r.Language)),
		Album:    Album{ID: r.Album.ID, Name: r.Album.Name},
		Year:     atoiSafe(r.Year),
		Explicit: r.Explicit,
		HasLyrics: strings.EqualFold(r.HasLyrics, "true"),
	}
	for _, a := range r.Artists.Primary {
		if a.ID == "" && a.Name == "" {
			continue
		}
		s.Artists = append(s.Artists, NamedEntity{ID: a.ID, Name: a.Name})
	}
	for _, img := range r.Image {
		if img.URL == "" {
			continue
		}
		s.ImageURLs = append(s.ImageURLs, MediaAsset{Quality: img.Quality, URL: img.URL})
	}
	for _, d := range r.DownloadURL {
		if d.URL == "" {
			continue
		}
		s.DownloadURLs = append(s.DownloadURLs, MediaAsset{Quality: d.Quality, URL: d.URL})
	}
	if pc := atoiSafe(r.PlayCount); pc > 0 {
		s.Popularity = float64(pc)
	}
	return s, true
}

// rawFallbackSong is the fallback provider's flat record shape: a
// comma-joined artist string and single stream/image URLs rather than
// quality-tagged arrays.
type rawFallbackSong struct {
	ID            string `json:"id"`
	Song          string `json:"song"`
	Language      string `json:"language"`
	Year          string `json:"year"`
	PrimaryArtists string `json:"primary_artists"`
	MediaURL      string `json:"media_url"`
	Image         string `json:"image"`
	AlbumID       string `json:"albumid"`
	Album         string `json:"album"`
	Duration      string `json:"duration"`
}

// fromFallback normalizes the fallback provider's flat record shape into a
// Song. Records missing id or name are dropped silently — the adapter
// never surfaces a malformed fallback entry.
func fromFallback(r rawFallbackSong) (Song, bool) {
	id := strings.TrimSpace(r.ID)
	name := strings.TrimSpace(r.Song)
	if id == "" || name == "" {
		return Song{}, false
	}

	s := Song{
		ID:       id,
		Name:     name,
		Language: strings.ToLower(strings.TrimSpace(r.Language)),
		Album:    Album{ID: r.AlbumID, Name: r.Album},
		Year:     atoiSafe(r.Year),
	}
	for _, name := range strings.Split(r.PrimaryArtists, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s.Artists = append(s.Artists, NamedEntity{Name: name})
	}
	if r.MediaURL != "" {
		// Single stream URL convention: tagged as 320kbps.
		s.DownloadURLs = []MediaAsset{{Quality: "320kbps", URL: r.MediaURL}}
	}
	if r.Image != "" {
		// Single image URL convention: synthesize the three sizes the
		// primary provider would otherwise supply, all pointing at the
		// same URL.
		s.ImageURLs = []MediaAsset{
			{Quality: "50x50", URL: r.Image},
			{Quality: "150x150", URL: r.Image},
			{Quality: "500x500", URL: r.Image},
		}
	}
	return s, true
}

func atoiSafe(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
