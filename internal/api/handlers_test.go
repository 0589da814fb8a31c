// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/eventbus"
	"github.com/loopfeedapp/loopfeed/internal/feed"
	"github.com/loopfeedapp/loopfeed/internal/hydrate"
	"github.com/loopfeedapp/loopfeed/internal/interactions"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

type testEnv struct {
	db     *database.DB
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	feedCfg := &config.FeedConfig{
		DefaultPageSize:   20,
		MaxPageSize:       100,
		SourceTimeout:     time.Second,
		PopularityWeights: config.DefaultPopularityWeights(),
		BreakerCooldown:   time.Minute,
	}
	apiCfg := &config.APIConfig{RateLimitDisabled: true}

	bus := eventbus.New(64, logging.NewTestLogger(io.Discard))
	t.Cleanup(bus.Close)

	handler := NewHandler(
		feed.NewComposer(db, feedCfg),
		hydrate.New(db),
		interactions.New(db, bus),
		db,
	)

	return &testEnv{db: db, router: NewRouter(apiCfg, handler)}
}

func (e *testEnv) seedUser(t *testing.T, id int64, name string) {
	t.Helper()
	if err := e.db.InsertUser(context.Background(), id, name); err != nil {
		t.Fatalf("InsertUser(%d) error = %v", id, err)
	}
}

func (e *testEnv) seedContent(t *testing.T, id, authorID int64, createdAt time.Time) {
	t.Helper()
	c := models.Content{
		ID:        id,
		AuthorID:  authorID,
		Type:      models.ContentTypeVideo,
		CreatedAt: createdAt,
	}
	if err := e.db.InsertContent(context.Background(), c); err != nil {
		t.Fatalf("InsertContent(%d) error = %v", id, err)
	}
}

func (e *testEnv) do(t *testing.T, method, target, viewer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if viewer != "" {
		req.Header.Set(viewerIDHeader, viewer)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestDiscoveryFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "viewer")
	env.seedUser(t, 2, "creator")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 6; i++ {
		env.seedContent(t, i, 2, base.Add(time.Duration(i)*time.Hour))
	}

	rec := env.do(t, http.MethodGet, "/api/v1/feed/discovery?limit=4&exclude_ids=1,2", "1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp discoveryResponse
	decodeInto(t, rec, &resp)

	if len(resp.Items) != 4 {
		t.Fatalf("got %d items, want 4", len(resp.Items))
	}
	for _, item := range resp.Items {
		if item.ID == 1 || item.ID == 2 {
			t.Errorf("item %d was in the exclusion set", item.ID)
		}
	}
	if len(resp.ExcludeIDs) != 2+len(resp.Items) {
		t.Errorf("exclude_ids has %d entries, want %d", len(resp.ExcludeIDs), 2+len(resp.Items))
	}
}

func TestDiscoveryFeedEmptyCorpus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feed/discovery", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for empty corpus", rec.Code)
	}

	var resp discoveryResponse
	decodeInto(t, rec, &resp)
	if len(resp.Items) != 0 {
		t.Errorf("items = %v, want empty", resp.Items)
	}
}

func TestFollowingFeedScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Viewer follows A and B only; A has 2 contents, B has 1, the
	// unfollowed C has 5.
	env.seedUser(t, 1, "viewer")
	env.seedUser(t, 2, "a")
	env.seedUser(t, 3, "b")
	env.seedUser(t, 4, "c")
	for _, followee := range []int64{2, 3} {
		if err := env.db.InsertFollow(ctx, 1, followee); err != nil {
			t.Fatalf("InsertFollow() error = %v", err)
		}
	}
	env.seedContent(t, 10, 2, base.Add(1*time.Hour))
	env.seedContent(t, 11, 2, base.Add(3*time.Hour))
	env.seedContent(t, 12, 3, base.Add(2*time.Hour))
	for i := int64(0); i < 5; i++ {
		env.seedContent(t, 20+i, 4, base.Add(time.Duration(i)*time.Minute))
	}

	rec := env.do(t, http.MethodGet, "/api/v1/feed/following?limit=10", "1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp followingResponse
	decodeInto(t, rec, &resp)

	want := []int64{11, 12, 10}
	if len(resp.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(resp.Items), len(want))
	}
	for i, item := range resp.Items {
		if item.ID != want[i] {
			t.Errorf("items[%d].ID = %d, want %d (newest first)", i, item.ID, want[i])
		}
	}
	if resp.NextCursor != 3 {
		t.Errorf("next_cursor = %d, want 3", resp.NextCursor)
	}
}

func TestFollowingFeedRequiresViewer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feed/following", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for anonymous following feed", rec.Code)
	}
}

func TestPostInteraction(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "viewer")
	env.seedUser(t, 2, "creator")
	env.seedContent(t, 10, 2, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	rec := env.do(t, http.MethodPost, "/api/v1/interactions", "1",
		`{"content_id": 10, "kind": "like"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp interactionResponse
	decodeInto(t, rec, &resp)
	if resp.Counters.Likes != 1 {
		t.Errorf("likes = %d, want 1", resp.Counters.Likes)
	}

	// Duplicate like is a no-op, not an error.
	rec = env.do(t, http.MethodPost, "/api/v1/interactions", "1",
		`{"content_id": 10, "kind": "like"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	decodeInto(t, rec, &resp)
	if resp.Counters.Likes != 1 {
		t.Errorf("likes after duplicate = %d, want 1", resp.Counters.Likes)
	}

	// Retract brings it back down.
	rec = env.do(t, http.MethodPost, "/api/v1/interactions", "1",
		`{"content_id": 10, "kind": "like", "retract": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("retract status = %d", rec.Code)
	}
	decodeInto(t, rec, &resp)
	if resp.Counters.Likes != 0 {
		t.Errorf("likes after retract = %d, want 0", resp.Counters.Likes)
	}
}

func TestPostInteractionNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "viewer")

	rec := env.do(t, http.MethodPost, "/api/v1/interactions", "1",
		`{"content_id": 999, "kind": "like"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPostInteractionValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "viewer")

	tests := []struct {
		name   string
		viewer string
		body   string
	}{
		{"unknown kind", "1", `{"content_id": 1, "kind": "poke"}`},
		{"missing content id", "1", `{"kind": "like"}`},
		{"malformed body", "1", `{`},
		{"anonymous viewer", "", `{"content_id": 1, "kind": "like"}`},
		{"bad viewer header", "abc", `{"content_id": 1, "kind": "like"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/interactions", tt.viewer, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
