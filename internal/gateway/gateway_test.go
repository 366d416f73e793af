package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ideavault/ideavault/internal/costs"
	"github.com/ideavault/ideavault/internal/events"
	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/internal/provider"
	"github.com/ideavault/ideavault/internal/storage"
)

type fakeStore struct {
	mu     sync.Mutex
	ideas  map[string]*idea.Idea
	cats   []idea.Category
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{ideas: make(map[string]*idea.Idea)}
}

func (f *fakeStore) CreateIdea(_ context.Context, in storage.CreateIdeaInput) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	i := &idea.Idea{
		ID:      fmt.Sprintf("idea-%d", f.nextID),
		Title:   in.Title,
		RawText: in.RawText,
		Status:  in.Status,
		Source:  in.Source,
	}
	f.ideas[i.ID] = i
	c := *i
	return &c, nil
}

func (f *fakeStore) GetIdea(_ context.Context, id string) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ideas[id]
	if !ok {
		return nil, idea.ErrNotFound
	}
	c := *i
	return &c, nil
}

func (f *fakeStore) UpdateIdea(_ context.Context, id string, in storage.UpdateIdeaInput) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ideas[id]
	if !ok {
		return nil, idea.ErrNotFound
	}
	if in.Status != nil {
		i.Status = *in.Status
	}
	if in.RawText != nil {
		i.RawText = *in.RawText
	}
	if in.Category != nil {
		i.Category = *in.Category
	}
	if in.Enrichment != nil {
		i.Enrichment = in.Enrichment
	}
	c := *i
	return &c, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]idea.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]idea.Category(nil), f.cats...), nil
}

func (f *fakeStore) AddCategory(_ context.Context, name, color string) (idea.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cats {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	c := idea.Category{Name: name, Color: color}
	f.cats = append(f.cats, c)
	return c, nil
}

func (f *fakeStore) Stats(context.Context) (*idea.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &idea.Stats{ByStatus: make(map[idea.Status]int), ByCategory: make(map[string]int)}
	for _, i := range f.ideas {
		s.Total++
		s.ByStatus[i.Status]++
	}
	return s, nil
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	if req.JSONMode {
		return &provider.CompletionResponse{
			Content: `{"summary":"A thing.","competitors":[],"market_size_estimate":"$1B","cagr_pct_estimate":5,"likely_biz_models":["saas"],"next_step":"talk to users","category":{"name":"SaaS","confidence":0.9,"reasoning":"software"}}`,
			Usage:   provider.Usage{TotalTokens: 400},
		}, nil
	}
	return &provider.CompletionResponse{Content: "Generated title", Usage: provider.Usage{TotalTokens: 20}}, nil
}

func (fakeCompleter) ModelName() string { return "fake-model" }

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, io.Reader) (*provider.Transcription, error) {
	return &provider.Transcription{Text: "spoken"}, nil
}

type fakeDownloader struct{}

func (fakeDownloader) DownloadFile(context.Context, string, int64) ([]byte, error) {
	return []byte("data"), nil
}

func newTestGateway(t *testing.T) (*Gateway, *httptest.Server, *fakeStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newFakeStore()
	svc := lifecycle.NewService(store, fakeCompleter{}, fakeTranscriber{}, fakeDownloader{},
		costs.NewLedger(), events.NewHub(), logger, lifecycle.Options{SkipClarification: true})

	g := &Gateway{
		config: Config{
			Bind: "127.0.0.1:0",
			Auth: AuthConfig{BearerToken: "test-token"},
		},
		logger:     logger,
		dispatcher: NewWebhookDispatcher(logger),
		svc:        svc,
		hub:        events.NewHub(),
		startedAt:  time.Now(),
	}
	g.config.defaults()
	g.config.Bind = "127.0.0.1:0"

	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)
	return g, srv, store
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func TestHealth(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var hr HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Status != "ok" {
		t.Errorf("health = %q", hr.Status)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/stats", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("expected success=false")
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/stats", "wrong-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", resp.StatusCode)
	}
}

func TestCaptureEndpoint(t *testing.T) {
	_, srv, store := newTestGateway(t)
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/capture", "test-token",
		captureRequest{Text: "An idea worth saving"})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !env.Success || env.Timestamp == "" {
		t.Errorf("envelope = %+v", env)
	}

	data := env.Data.(map[string]any)
	ideaData := data["idea"].(map[string]any)
	if ideaData["id"] != "idea-1" {
		t.Errorf("idea = %+v", ideaData)
	}
	if data["next"] != string(lifecycle.StepEnrich) {
		t.Errorf("next = %v", data["next"])
	}

	if _, err := store.GetIdea(context.Background(), "idea-1"); err != nil {
		t.Errorf("idea not stored: %v", err)
	}
}

func TestCaptureEndpointRejectsEmpty(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/capture", "test-token",
		captureRequest{Text: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if env.Success || env.Error == "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestEnrichEndpoint(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	_, captureEnv := doJSON(t, http.MethodPost, srv.URL+"/api/capture", "test-token",
		captureRequest{Text: "An idea worth enriching"})
	id := captureEnv.Data.(map[string]any)["idea"].(map[string]any)["id"].(string)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/enrich", "test-token",
		enrichRequest{ID: id})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	data := env.Data.(map[string]any)
	enrichment := data["enrichment"].(map[string]any)
	if enrichment["summary"] != "A thing." {
		t.Errorf("enrichment = %+v", enrichment)
	}
	if data["category"] != "SaaS" {
		t.Errorf("category = %v", data["category"])
	}
	if data["cost_usd"].(float64) <= 0 {
		t.Errorf("cost = %v", data["cost_usd"])
	}
}

func TestGetIdeaNotFound(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/ideas/missing", "test-token", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

func TestCategoriesRoundTrip(t *testing.T) {
	_, srv, _ := newTestGateway(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/categories", "test-token",
		addCategoryRequest{Name: "Hardware"})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("add status = %d", resp.StatusCode)
	}
	added := env.Data.(map[string]any)
	if added["Name"] != "Hardware" {
		t.Errorf("added = %+v", added)
	}

	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/categories", "test-token", nil)
	cats := env.Data.([]any)
	if len(cats) != 1 {
		t.Errorf("categories = %+v", cats)
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	bodies [][]byte
	err    error
}

func (h *recordingHandler) HandleWebhook(_ context.Context, _ string, body []byte, _ http.Header) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bodies = append(h.bodies, body)
	return h.err
}

func TestWebhookDispatch(t *testing.T) {
	g, srv, _ := newTestGateway(t)
	handler := &recordingHandler{}
	g.dispatcher.Register("telegram", handler)

	resp, err := http.Post(srv.URL+"/webhooks/telegram", "application/json",
		strings.NewReader(`{"update_id":1}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if len(handler.bodies) != 1 || string(handler.bodies[0]) != `{"update_id":1}` {
		t.Errorf("bodies = %q", handler.bodies)
	}
}

func TestWebhookHMAC(t *testing.T) {
	g, srv, _ := newTestGateway(t)
	handler := &recordingHandler{}
	g.dispatcher.Register("github", handler)
	g.dispatcher.SetSecret("github", "s3cret")

	body := []byte(`{"event":"push"}`)

	// Missing signature.
	resp, err := http.Post(srv.URL+"/webhooks/github", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unsigned status = %d", resp.StatusCode)
	}

	// Valid signature.
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhooks/github", bytes.NewReader(body))
	req.Header.Set("X-Signature-256", sig)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("signed post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("signed status = %d", resp.StatusCode)
	}
	if len(handler.bodies) != 1 {
		t.Errorf("handler calls = %d", len(handler.bodies))
	}
}

func TestWebhookUnknownSourceAccepted(t *testing.T) {
	_, srv, _ := newTestGateway(t)
	resp, err := http.Post(srv.URL+"/webhooks/nobody", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "no handler registered") {
		t.Errorf("body = %s", data)
	}
}
