// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loopfeedapp/loopfeed/internal/config"
)

// NewRouter assembles the chi router with the global middleware stack.
func NewRouter(cfg *config.APIConfig, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(NewCORS(cfg))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(NewRateLimit(cfg))

		r.Get("/feed/discovery", h.DiscoveryFeed)
		r.Get("/feed/following", h.FollowingFeed)
		r.Post("/interactions", h.PostInteraction)
	})

	return r
}
