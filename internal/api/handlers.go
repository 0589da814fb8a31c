// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/feed"
	"github.com/loopfeedapp/loopfeed/internal/hydrate"
	"github.com/loopfeedapp/loopfeed/internal/interactions"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

// Pinger is the health probe surface of the storage layer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the services behind the HTTP endpoints.
type Handler struct {
	composer     *feed.Composer
	hydrator     *hydrate.Hydrator
	interactions *interactions.Service
	db           Pinger
	validate     *validator.Validate
}

// NewHandler wires the handler over the feed engine and interaction
// pipeline.
func NewHandler(composer *feed.Composer, hydrator *hydrate.Hydrator, svc *interactions.Service, db Pinger) *Handler {
	return &Handler{
		composer:     composer,
		hydrator:     hydrator,
		interactions: svc,
		db:           db,
		validate:     validator.New(),
	}
}

type discoveryResponse struct {
	Items      []models.ContentSummary `json:"items"`
	ExcludeIDs []int64                 `json:"exclude_ids"`
}

type followingResponse struct {
	Items      []models.ContentSummary `json:"items"`
	NextCursor int                     `json:"next_cursor"`
}

type interactionResponse struct {
	Counters models.InteractionCounters `json:"counters"`
}

// DiscoveryFeed serves GET /api/v1/feed/discovery.
//
// Pagination is stateless: the client echoes exclude_ids from the
// previous response. Source failures inside the composer degrade to a
// smaller page rather than an error.
func (h *Handler) DiscoveryFeed(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exclude, err := queryIDList(r, "exclude_ids")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, newExclude := h.composer.ComposeDiscoveryFeed(r.Context(), viewer, exclude, limit)

	summaries, err := h.hydrator.Hydrate(r.Context(), viewer, ids)
	if err != nil {
		logging.Err(err).Msg("discovery hydration failed")
		writeError(w, http.StatusInternalServerError, "hydration failed")
		return
	}

	writeJSON(w, http.StatusOK, discoveryResponse{
		Items:      orderSummaries(ids, summaries),
		ExcludeIDs: newExclude,
	})
}

// FollowingFeed serves GET /api/v1/feed/following, cursored by offset.
func (h *Handler) FollowingFeed(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if viewer == hydrate.AnonymousViewer {
		writeError(w, http.StatusBadRequest, "following feed requires a viewer")
		return
	}
	cursor, err := queryInt(r, "cursor", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.composer.ComposeFollowingFeed(r.Context(), viewer, cursor, limit)
	if err != nil {
		logging.Err(err).Msg("following feed failed")
		writeError(w, http.StatusInternalServerError, "feed unavailable")
		return
	}

	summaries, err := h.hydrator.Hydrate(r.Context(), viewer, ids)
	if err != nil {
		logging.Err(err).Msg("following hydration failed")
		writeError(w, http.StatusInternalServerError, "hydration failed")
		return
	}

	writeJSON(w, http.StatusOK, followingResponse{
		Items:      orderSummaries(ids, summaries),
		NextCursor: cursor + len(ids),
	})
}

// PostInteraction serves POST /api/v1/interactions.
func (h *Handler) PostInteraction(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if viewer == hydrate.AnonymousViewer {
		writeError(w, http.StatusBadRequest, "interactions require a viewer")
		return
	}

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind := models.InteractionKind(req.Kind)

	var counters models.InteractionCounters
	if req.Retract {
		counters, err = h.interactions.Retract(r.Context(), viewer, req.ContentID, kind)
	} else {
		counters, err = h.interactions.Record(r.Context(), viewer, req.ContentID, kind)
	}
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "content not found")
		return
	case err != nil:
		logging.Err(err).Msg("interaction failed")
		writeError(w, http.StatusInternalServerError, "interaction failed")
		return
	}

	writeJSON(w, http.StatusOK, interactionResponse{Counters: counters})
}

// Healthz serves GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// orderSummaries re-sorts hydration output into the composed page
// order. Hydration output order is unspecified and may be shorter than
// ids when content vanished mid-request.
func orderSummaries(ids []int64, summaries []models.ContentSummary) []models.ContentSummary {
	byID := make(map[int64]models.ContentSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	ordered := make([]models.ContentSummary, 0, len(summaries))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
