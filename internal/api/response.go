// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/loopfeedapp/loopfeed/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with a status code. Encoding failures are
// logged; by then the header is already sent, so there is nothing
// better to do.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Err(err).Msg("response encode failed")
	}
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
