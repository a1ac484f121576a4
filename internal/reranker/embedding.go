// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package reranker

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/profile"
)

// EmbeddingDim is the fixed dimensionality of the hashed user/song
// projection.
const EmbeddingDim = 16

// signedHash derives a deterministic signed value in [-97, 97] from a
// string, using blake2b so the projection needs no learned hash table.
func signedHash(s string) float64 {
	sum := blake2b.Sum256([]byte(s))
	v := binary.BigEndian.Uint64(sum[:8])
	mod := int64(v % 195)
	return float64(mod - 97)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// accumulate adds token t's contribution, weighted by w, to every
// dimension of vec.
func accumulate(vec []float64, t string, w float64) {
	for i := 0; i < EmbeddingDim; i++ {
		vec[i] += (signedHash(fmt.Sprintf("%s#%d", t, i)) / 97) * w
	}
}

func l2Normalize(vec []float64) {
	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] /= norm
	}
}

// userEmbedding builds the user's dimension-16 hashed projection from a
// RealtimeProfile, per the contribution table.
func userEmbedding(p profile.RealtimeProfile) []float64 {
	vec := make([]float64, EmbeddingDim)

	for _, a := range p.FavoriteArtists {
		accumulate(vec, "fav_artist:"+strings.ToLower(a.Name), 2.4)
	}
	for lang, a := range p.LanguageAffinity {
		w := 0.9 + clamp(a, -2, 8)*0.08
		accumulate(vec, "language:"+strings.ToLower(lang), w)
	}
	for artist, a := range p.ArtistAffinity {
		w := clamp(a, -4, 10) * 0.25
		accumulate(vec, "artist:"+strings.ToLower(artist), w)
	}

	terms := p.SearchTerms
	if len(terms) > 20 {
		terms = terms[:20]
	}
	for i, term := range terms {
		w := 1 / (1 + float64(i)*0.45)
		for _, tok := range strings.Fields(term) {
			accumulate(vec, tok, w)
		}
	}

	count := 0
	for id, interaction := range p.SongInteractions {
		if count >= 200 {
			break
		}
		count++
		accumulate(vec, "song:"+id, interaction.Affinity*0.15)
		if interaction.Artist != "" {
			accumulate(vec, "artist:"+strings.ToLower(interaction.Artist), interaction.Affinity*0.08)
		}
		if interaction.Language != "" {
			accumulate(vec, "language:"+strings.ToLower(interaction.Language), interaction.Affinity*0.06)
		}
	}

	l2Normalize(vec)
	return vec
}

// songEmbedding builds a Song's embedding in the same token space as
// userEmbedding, so their dot product is a meaningful similarity: its own
// artists and language contribute at unit weight, and its title words
// contribute with the same positional decay search terms use.
func songEmbedding(s catalog.Song) []float64 {
	vec := make([]float64, EmbeddingDim)

	for _, a := range s.Artists {
		accumulate(vec, "fav_artist:"+strings.ToLower(a.Name), 1.0)
		accumulate(vec, "artist:"+strings.ToLower(a.Name), 1.0)
	}
	if s.Language != "" {
		accumulate(vec, "language:"+strings.ToLower(s.Language), 1.0)
	}
	accumulate(vec, "song:"+s.ID, 1.0)

	for i, tok := range strings.Fields(strings.ToLower(s.Name)) {
		w := 1 / (1 + float64(i)*0.45)
		accumulate(vec, tok, w)
	}

	l2Normalize(vec)
	return vec
}

// similarity is (dot + 1) / 2 clamped to [0,1].
func similarity(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return clamp((dot+1)/2, 0, 1)
}
