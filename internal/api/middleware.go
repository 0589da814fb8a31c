// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package api provides the HTTP surface over the feed engine and the
// interaction pipeline, routed with chi.
package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/metrics"
)

// RequestLogger logs one line per request with method, path, status,
// and latency, and feeds the API metrics.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, r.URL.Path, ww.Status(), elapsed)
		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", elapsed).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// NewCORS builds the CORS middleware from config. Origins default to
// empty, requiring explicit configuration.
func NewCORS(cfg *config.APIConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Viewer-ID"},
		MaxAge:         86400,
	})
}

// NewRateLimit builds the per-IP rate limiting middleware from config,
// or a pass-through when disabled.
func NewRateLimit(cfg *config.APIConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	reqs := cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(reqs, window, httprate.WithKeyFuncs(httprate.KeyByIP))
}
