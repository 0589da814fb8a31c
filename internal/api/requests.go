// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/loopfeedapp/loopfeed/internal/hydrate"
)

// viewerIDHeader carries the authenticated viewer id. Authentication
// itself lives in the gateway in front of this service; an absent
// header means an anonymous viewer.
const viewerIDHeader = "X-Viewer-ID"

// interactionRequest is the POST /interactions body.
type interactionRequest struct {
	ContentID int64  `json:"content_id" validate:"required,gt=0"`
	Kind      string `json:"kind" validate:"required,oneof=view like comment save share"`

	// Retract undoes a previous like/save instead of recording one.
	Retract bool `json:"retract"`
}

// viewerID extracts the viewer from the request header. Missing or
// empty means anonymous; a malformed or negative value is an error.
func viewerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(viewerIDHeader))
	if raw == "" {
		return hydrate.AnonymousViewer, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s header %q", viewerIDHeader, raw)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, returning def
// when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// queryIDList parses a comma-separated id list query parameter.
func queryIDList(r *http.Request, name string) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s", p, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
