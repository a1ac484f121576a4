// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/config"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/profile"
	"github.com/aurastream/corehub/internal/recommend"
	"github.com/aurastream/corehub/internal/reranker"
	"github.com/aurastream/corehub/internal/search"
	"github.com/aurastream/corehub/internal/songindex"
	"github.com/aurastream/corehub/internal/validation"
)

// Handlers wires the domain layer (catalog, search, reranker, recommend,
// profile store) into HTTP handlers. Every handler binds its request,
// validates it, delegates to the owning package, and writes the response
// through ResponseWriter.
type Handlers struct {
	cfg      config.Config
	client   *catalog.Client
	engine   *search.Engine
	index    *songindex.Index
	rank     *reranker.Reranker
	gen      *recommend.Generator
	store    profile.Store
}

// NewHandlers builds the handler set over the wired domain components.
func NewHandlers(cfg config.Config, client *catalog.Client, engine *search.Engine, index *songindex.Index, rank *reranker.Reranker, gen *recommend.Generator, store profile.Store) *Handlers {
	return &Handlers{cfg: cfg, client: client, engine: engine, index: index, rank: rank, gen: gen, store: store}
}

// Healthz is the liveness probe: constant-time, no dependency calls.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"ok":        true,
		"service":   "corehub",
		"timestamp": time.Now().UTC(),
	})
}

// Health redirects to the canonical liveness path, matching legacy clients
// that still probe GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/healthz", http.StatusFound)
}

func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// searchResponse is the composite payload for GET /api/search. The
// sectioning scheme below (language-grouped songs, languages seen outside
// the caller's preferred set, no album sectioning since catalog.Album
// carries no language) is this package's own decision, not a documented
// contract.
type searchResponse struct {
	Songs                 []catalog.Song    `json:"songs"`
	Albums                []catalog.Album   `json:"albums"`
	Artists               []catalog.Artist  `json:"artists"`
	TopResult             *catalog.Song     `json:"topResult"`
	RelatedLanguages      []string          `json:"relatedLanguages"`
	AlbumLanguageSections []searchSection   `json:"albumLanguageSections"`
	Sections              []searchSection   `json:"sections"`
}

type searchSection struct {
	Language string        `json:"language"`
	Songs    []catalog.Song `json:"songs,omitempty"`
	Albums   []catalog.Album `json:"albums,omitempty"`
}

// Search is GET /api/search. Auth is optional: when a verified uid is
// present in the request context, results are reranked for that user.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		rw.BadRequest("query is required")
		return
	}
	limit := parseIntParam(r, "limit", 20)
	if limit < 10 {
		limit = 10
	}
	if limit > 20 {
		limit = 20
	}
	preferredLanguages := splitCSV(r.URL.Query().Get("languages"))

	songs, err := h.engine.Search(r.Context(), query, search.Options{
		WaitForFresh:       false,
		PreferredLanguages: preferredLanguages,
	})
	if err != nil {
		logging.Error().Err(err).Str("query", query).Msg("smart search failed")
	}
	if len(songs) > limit {
		songs = songs[:limit]
	}

	var albums []catalog.Album
	var artists []catalog.Artist
	if broad, err := h.client.BroadSearch(r.Context(), query, parseIntParam(r, "page", 1)); err == nil {
		albums = broad.Albums
		artists = broad.Artists
	} else {
		logging.Warn().Err(err).Str("query", query).Msg("broad search failed, omitting albums/artists")
	}

	if uid := UIDFromContext(r.Context()); uid != "" && h.rank != nil {
		reranked, err := h.rank.Rerank(r.Context(), uid, songs, reranker.Context{
			Query:              query,
			PreferredLanguages: preferredLanguages,
			Mode:               "search",
		})
		if err != nil {
			logging.Warn().Err(err).Str("uid", uid).Msg("rerank failed, keeping rule-scored order")
		} else {
			songs = reranked
		}
	}

	resp := buildSearchResponse(songs, albums, artists, preferredLanguages)
	rw.Success(resp)
}

func buildSearchResponse(songs []catalog.Song, albums []catalog.Album, artists []catalog.Artist, preferred []string) searchResponse {
	preferredSet := make(map[string]struct{}, len(preferred))
	for _, lang := range preferred {
		preferredSet[strings.ToLower(lang)] = struct{}{}
	}

	byLanguage := make(map[string][]catalog.Song)
	var order []string
	relatedSet := make(map[string]struct{})
	for _, s := range songs {
		lang := s.Language
		if lang == "" {
			continue
		}
		if _, ok := byLanguage[lang]; !ok {
			order = append(order, lang)
		}
		byLanguage[lang] = append(byLanguage[lang], s)
		if _, preferred := preferredSet[strings.ToLower(lang)]; !preferred {
			relatedSet[lang] = struct{}{}
		}
	}
	sort.Strings(order)

	sections := make([]searchSection, 0, len(order))
	for _, lang := range order {
		sections = append(sections, searchSection{Language: lang, Songs: byLanguage[lang]})
	}

	related := make([]string, 0, len(relatedSet))
	for lang := range relatedSet {
		related = append(related, lang)
	}
	sort.Strings(related)

	var top *catalog.Song
	if len(songs) > 0 {
		s := songs[0]
		top = &s
	}

	return searchResponse{
		Songs:                 songs,
		Albums:                albums,
		Artists:               artists,
		TopResult:             top,
		RelatedLanguages:      related,
		AlbumLanguageSections: []searchSection{},
		Sections:              sections,
	}
}

// SongByID is GET /api/songs/:id.
func (h *Handlers) SongByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	song, err := h.client.SongByID(r.Context(), id)
	if err != nil {
		h.writeUpstreamErr(rw, err, "song")
		return
	}
	rw.Success(song)
}

// Albums is GET /api/albums.
func (h *Handlers) Albums(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	switch {
	case id != "":
		raw, err := h.client.AlbumByID(r.Context(), id)
		if err != nil {
			h.writeUpstreamErr(rw, err, "album")
			return
		}
		rw.Success(json.RawMessage(raw))
	case query != "":
		raw, err := h.client.AlbumsByQuery(r.Context(), query)
		if err != nil {
			h.writeUpstreamErr(rw, err, "albums")
			return
		}
		rw.Success(json.RawMessage(raw))
	default:
		rw.BadRequest("id or query is required")
	}
}

// ArtistsByLanguage is GET /api/artists/by-language.
func (h *Handlers) ArtistsByLanguage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	language := strings.TrimSpace(r.URL.Query().Get("language"))
	if language == "" {
		rw.BadRequest("language is required")
		return
	}
	artists, err := h.client.ArtistsByLanguage(r.Context(), language)
	if err != nil {
		h.writeUpstreamErr(rw, err, "artists")
		return
	}
	rw.SuccessWithCount(artists, len(artists))
}

// ArtistAlbums is GET /api/artists/:id/albums.
func (h *Handlers) ArtistAlbums(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	limit := parseIntParam(r, "limit", 20)
	page := parseIntParam(r, "page", 1)
	raw, err := h.client.ArtistAlbums(r.Context(), id, limit, page)
	if err != nil {
		h.writeUpstreamErr(rw, err, "albums")
		return
	}
	rw.Success(json.RawMessage(raw))
}

// GetPreferences is GET /api/user/preferences.
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	uid := UIDFromContext(r.Context())
	prefs, found, err := h.store.GetPreferences(r.Context(), uid)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !found {
		rw.NotFound("no preferences saved yet; POST /api/user/preferences to create one")
		return
	}
	rw.Success(prefs)
}

// SavePreferences is POST /api/user/preferences.
func (h *Handlers) SavePreferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if ve := validation.ValidateStruct(&req); ve != nil {
		apiErr := ve.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if !req.HasContent() {
		rw.BadRequest("at least one of languages or favoriteArtists is required")
		return
	}

	uid := UIDFromContext(r.Context())
	prefs := profile.Preferences{
		UID:             uid,
		Languages:       req.Languages,
		FavoriteArtists: req.FavoriteArtists,
	}
	if err := h.store.SavePreferences(r.Context(), uid, prefs); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithMessage("preferences saved", prefs)
}

// activityTypeFromPath maps the :type URL segment onto profile.ActivityType,
// rejecting anything outside the four documented kinds.
func activityTypeFromPath(raw string) (profile.ActivityType, bool) {
	switch profile.ActivityType(raw) {
	case profile.ActivitySearch, profile.ActivityPlay, profile.ActivitySkip, profile.ActivitySearchClick:
		return profile.ActivityType(raw), true
	default:
		return "", false
	}
}

// LogActivity is POST /api/activity/:type.
func (h *Handlers) LogActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	activityType, ok := activityTypeFromPath(chi.URLParam(r, "type"))
	if !ok {
		rw.BadRequest("unknown activity type")
		return
	}
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if ve := validation.ValidateStruct(&req); ve != nil {
		apiErr := ve.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if (activityType == profile.ActivityPlay || activityType == profile.ActivitySkip) && req.SongID == "" {
		rw.BadRequest("songId is required for play and skip events")
		return
	}

	uid := UIDFromContext(r.Context())
	event := profile.ActivityEvent{
		Type:     activityType,
		SongID:   req.SongID,
		SongName: req.SongName,
		Artist:   req.Artist,
		Language: req.Language,
		Genre:    req.Genre,
		Query:    req.Query,
		Duration: req.Duration,
		SkipTime: req.SkipTime,
	}
	pushID, err := h.store.AppendActivity(r.Context(), uid, event)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithMessage("activity logged", map[string]string{"id": pushID})
}

// ActivityHistory is GET /api/activity/history.
func (h *Handlers) ActivityHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	uid := UIDFromContext(r.Context())
	limit := parseIntParam(r, "limit", 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	var activityType profile.ActivityType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, ok := activityTypeFromPath(raw)
		if !ok {
			rw.BadRequest("unknown activity type")
			return
		}
		activityType = t
	}
	events, err := h.store.ActivityHistory(r.Context(), uid, activityType, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithCount(events, len(events))
}

// Recommendations is GET /api/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	uid := UIDFromContext(r.Context())
	if uid == "" {
		rw.Unauthorized("recommendations require an authenticated user")
		return
	}
	prefs, found, err := h.store.GetPreferences(r.Context(), uid)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !found {
		rw.NotFound("no preferences saved yet; POST /api/user/preferences before requesting recommendations")
		return
	}
	limit := parseIntParam(r, "limit", h.cfg.Recommend.DefaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > h.cfg.Recommend.MaxGeneralLimit {
		limit = h.cfg.Recommend.MaxGeneralLimit
	}

	songs, err := h.gen.GenerateRecommendations(r.Context(), prefs, limit)
	if err != nil {
		rw.InternalError("failed to generate recommendations")
		return
	}
	rw.SuccessWithCount(songs, len(songs))
}

// NextTrack is POST /api/recommendations/next.
func (h *Handlers) NextTrack(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req NextTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if ve := validation.ValidateStruct(&req); ve != nil {
		apiErr := ve.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.cfg.Recommend.NextTrackLimit
	}
	if limit > recommend.NextTrackMaxLimit {
		limit = recommend.NextTrackMaxLimit
	}

	current := recommend.CurrentSong{
		ID:       req.CurrentSong.ID,
		Name:     req.CurrentSong.Name,
		Language: req.CurrentSong.Language,
		Genre:    req.CurrentSong.Genre,
		Album:    catalog.Album{ID: req.CurrentSong.Album.ID, Name: req.CurrentSong.Album.Name},
	}
	for _, a := range req.CurrentSong.Artists {
		current.Artists = append(current.Artists, catalog.NamedEntity{ID: a.ID, Name: a.Name})
	}

	uid := UIDFromContext(r.Context())
	songs, err := h.gen.GenerateNextTrack(r.Context(), uid, current, limit)
	if err != nil {
		rw.InternalError("failed to generate next track")
		return
	}
	rw.SuccessWithCount(songs, len(songs))
}

// writeUpstreamErr maps a catalog.UpstreamError to the appropriate HTTP
// status; any other error is an internal failure.
func (h *Handlers) writeUpstreamErr(rw *ResponseWriter, err error, noun string) {
	var upstream *catalog.UpstreamError
	if errors.As(err, &upstream) {
		logging.Warn().Err(err).Str("provider", upstream.Provider).Msg("upstream catalog call failed")
		rw.ExternalServiceError(upstream.Provider, err)
		return
	}
	logging.Error().Err(err).Msg("catalog lookup failed")
	rw.NotFound(noun + " not found")
}
