package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/storage"
)

func testStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Store{
		config: Config{
			Token:      "secret-token",
			DatabaseID: "db-1",
			BaseURL:    srv.URL,
			Version:    "2022-06-28",
			Timeout:    "5s",
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func pageJSON(id string) string {
	return `{
		"id": "` + id + `",
		"created_time": "2026-01-02T10:00:00Z",
		"last_edited_time": "2026-01-02T10:00:00Z",
		"properties": {
			"Idea title": {"title": [{"plain_text": "Solar bike lights"}]},
			"Raw text": {"rich_text": [{"plain_text": "Lights that charge while riding"}]},
			"Status": {"select": {"name": "Captured"}},
			"Source": {"select": {"name": "telegram"}}
		}
	}`
}

func TestCreateIdea(t *testing.T) {
	var gotReq createPageRequest
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Notion-Version = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("auth = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		io.WriteString(w, pageJSON("page-1"))
	})

	created, err := s.CreateIdea(context.Background(), storage.CreateIdeaInput{
		Title:   "Solar bike lights",
		RawText: "Lights that charge while riding",
		Status:  idea.StatusCaptured,
		Source:  "telegram",
		ChatID:  42,
		Attachments: []idea.Attachment{
			{Type: idea.AttachmentImage, URL: "https://example.com/p.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if created.ID != "page-1" || created.PageID != "page-1" {
		t.Errorf("id = %q page = %q", created.ID, created.PageID)
	}
	if created.ChatID != 42 {
		t.Errorf("chat id = %d", created.ChatID)
	}

	if gotReq.Parent.DatabaseID != "db-1" {
		t.Errorf("parent = %+v", gotReq.Parent)
	}
	title := gotReq.Properties["Idea title"]
	if len(title.Title) != 1 || title.Title[0].Text.Content != "Solar bike lights" {
		t.Errorf("title property = %+v", title)
	}
	if sel := gotReq.Properties["Status"].Select; sel == nil || sel.Name != "Captured" {
		t.Errorf("status property = %+v", gotReq.Properties["Status"])
	}
	// Attachments become page content, not properties.
	if len(gotReq.Children) != 2 {
		t.Errorf("children = %+v", gotReq.Children)
	}
}

func TestGetIdeaNotFound(t *testing.T) {
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"object":"error","status":404,"code":"object_not_found","message":"no such page"}`)
	})
	_, err := s.GetIdea(context.Background(), "missing")
	if !errors.Is(err, idea.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"code":"rate_limited","message":"slow down"}`)
			return
		}
		io.WriteString(w, pageJSON("page-1"))
	})

	got, err := s.GetIdea(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("GetIdea: %v", err)
	}
	if got.Title != "Solar bike lights" {
		t.Errorf("title = %q", got.Title)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d", attempts)
	}
}

func TestWritesNeverRetried(t *testing.T) {
	attempts := 0
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"code":"internal_server_error","message":"oops"}`)
	})

	_, err := s.CreateIdea(context.Background(), storage.CreateIdeaInput{
		Title:  "x",
		Status: idea.StatusCaptured,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, writes must not retry", attempts)
	}
}

func TestUpdateIdeaAppendsEnrichmentBrief(t *testing.T) {
	var paths []string
	var briefBody appendChildrenRequest
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/blocks/") {
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &briefBody); err != nil {
				t.Fatalf("decode brief: %v", err)
			}
			io.WriteString(w, `{"object":"list"}`)
			return
		}
		io.WriteString(w, pageJSON("page-1"))
	})

	status := idea.StatusEnriched
	updated, err := s.UpdateIdea(context.Background(), "page-1", storage.UpdateIdeaInput{
		Status: &status,
		Enrichment: &idea.Enrichment{
			Summary:     "Commuter safety niche",
			Competitors: []idea.Competitor{{Name: "LumosCo", OneLine: "helmet lights"}},
			Disclaimer:  "Estimates - verify independently",
		},
	})
	if err != nil {
		t.Fatalf("UpdateIdea: %v", err)
	}
	if updated.Enrichment == nil || updated.Enrichment.Summary != "Commuter safety niche" {
		t.Errorf("enrichment = %+v", updated.Enrichment)
	}

	want := []string{"PATCH /pages/page-1", "PATCH /blocks/page-1/children"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v", paths)
	}
	if len(briefBody.Children) == 0 {
		t.Error("expected brief blocks")
	}
}

func TestAddCategoryExisting(t *testing.T) {
	writes := 0
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			writes++
		}
		io.WriteString(w, `{
			"properties": {
				"Category": {"select": {"options": [{"name": "Hardware", "color": "blue"}]}}
			}
		}`)
	})

	got, err := s.AddCategory(context.Background(), "HARDWARE", "red")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if got.Name != "Hardware" || got.Color != "blue" {
		t.Errorf("got = %+v", got)
	}
	if writes != 0 {
		t.Errorf("writes = %d, existing name must not trigger a write", writes)
	}
}

func TestStatsPagination(t *testing.T) {
	call := 0
	s := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		call++
		var req queryRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode query: %v", err)
		}
		switch call {
		case 1:
			if req.StartCursor != "" {
				t.Errorf("first cursor = %q", req.StartCursor)
			}
			io.WriteString(w, `{
				"results": [
					{"id":"a","properties":{"Status":{"select":{"name":"Enriched"}},"Category":{"select":{"name":"Hardware"}}}},
					{"id":"b","properties":{"Status":{"select":{"name":"Captured"}}}}
				],
				"has_more": true,
				"next_cursor": "cur-2"
			}`)
		case 2:
			if req.StartCursor != "cur-2" {
				t.Errorf("second cursor = %q", req.StartCursor)
			}
			io.WriteString(w, `{
				"results": [
					{"id":"c","properties":{"Status":{"select":{"name":"Enriched"}},"Category":{"select":{"name":"Hardware"}}}}
				],
				"has_more": false
			}`)
		default:
			t.Fatalf("unexpected call %d", call)
		}
	})

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.ByStatus[idea.StatusEnriched] != 2 {
		t.Errorf("enriched = %d", stats.ByStatus[idea.StatusEnriched])
	}
	if stats.ByCategory["Hardware"] != 2 {
		t.Errorf("hardware = %d", stats.ByCategory["Hardware"])
	}
}

func TestRichTextChunking(t *testing.T) {
	long := strings.Repeat("a", notionTextLimit+100)
	segments := toRichText(long)
	if len(segments) != 2 {
		t.Fatalf("segments = %d", len(segments))
	}
	if len([]rune(segments[0].Text.Content)) != notionTextLimit {
		t.Errorf("first segment = %d runes", len([]rune(segments[0].Text.Content)))
	}
	if plainText(segments) != long {
		t.Error("round trip mismatch")
	}
}
