package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jugnunagar/folio/internal/handlers"
	"github.com/jugnunagar/folio/internal/mailer"
	"github.com/jugnunagar/folio/internal/posts"
	"go.uber.org/zap"
)

type nopSender struct{}

func (nopSender) Send(context.Context, mailer.Message) error { return nil }

func newTestServer(t *testing.T, adminKey string) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	store := posts.NewStore(posts.NewMemoryMedium([]posts.Post{}), logger)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc := posts.NewService(store, nil, logger)

	h := New(Handlers{
		Posts:   handlers.NewPostsHandler(svc, logger),
		Contact: handlers.NewContactHandler(mailer.NewRelay(nopSender{}, "owner@example.com", "Owner"), true, logger),
		Upload:  handlers.NewUploadHandler(nil, logger),
		Sitemap: handlers.NewSitemapHandler(svc, "https://site.dev", logger),
		Feed:    handlers.NewFeedHandler(svc, "https://site.dev", "Owner", logger),
		Health:  handlers.Health(&handlers.HealthDeps{Store: store}),
		Storage: handlers.StorageInfo(store),
	}, Options{AdminAPIKey: adminKey, CORSOrigins: []string{"*"}}, logger)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp, out
}

func TestRoutes_PublishFlow(t *testing.T) {
	srv := newTestServer(t, "")

	resp, body := do(t, http.MethodGet, srv.URL+"/api/posts", "", nil)
	if resp.StatusCode != http.StatusOK || len(body["posts"].([]any)) != 0 {
		t.Fatalf("empty list: %d %v", resp.StatusCode, body)
	}

	draft := `{"id":"1","slug":"hello","title":"Hello","contentHtml":"<p>Hi</p>","tags":["go"],"date":"2025-01-01T00:00:00Z","readMinutes":3,"published":false}`
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/admin/posts", draft, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save draft = %d", resp.StatusCode)
	}

	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/posts/hello", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("draft visible: %d", resp.StatusCode)
	}
	_, body = do(t, http.MethodGet, srv.URL+"/api/admin/posts", "", nil)
	if len(body["posts"].([]any)) != 1 {
		t.Errorf("admin list = %v", body)
	}

	published := strings.Replace(draft, `"published":false`, `"published":true`, 1)
	do(t, http.MethodPost, srv.URL+"/api/admin/posts", published, nil)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/posts/hello", "", nil)
	if resp.StatusCode != http.StatusOK || body["post"].(map[string]any)["id"] != "1" {
		t.Errorf("published by slug: %d %v", resp.StatusCode, body)
	}
	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/posts/1", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("published by id: %d", resp.StatusCode)
	}

	resp, body = do(t, http.MethodDelete, srv.URL+"/api/admin/posts/1", "", nil)
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Errorf("delete: %d %v", resp.StatusCode, body)
	}
	if resp, _ := do(t, http.MethodDelete, srv.URL+"/api/admin/posts/1", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d", resp.StatusCode)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/posts"},
		{http.MethodPost, "/api/posts/hello"},
		{http.MethodPatch, "/api/admin/posts"},
		{http.MethodGet, "/api/admin/posts/1"},
		{http.MethodGet, "/api/contact"},
		{http.MethodPost, "/api/sitemap.xml"},
		{http.MethodDelete, "/api/rss.xml"},
		{http.MethodGet, "/api/upload"},
		{http.MethodPut, "/api/admin/upload"},
		{http.MethodPost, "/api/admin/storage"},
		{http.MethodPost, "/api/health"},
	} {
		resp, body := do(t, tc.method, srv.URL+tc.path, "", nil)
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d", tc.method, tc.path, resp.StatusCode)
			continue
		}
		if body["ok"] != false || body["error"] != "Method not allowed" {
			t.Errorf("%s %s body = %v", tc.method, tc.path, body)
		}
	}
}

func TestRoutes_NotFound(t *testing.T) {
	srv := newTestServer(t, "")
	resp, body := do(t, http.MethodGet, srv.URL+"/api/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound || body["ok"] != false {
		t.Errorf("status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestRoutes_AdminKey(t *testing.T) {
	srv := newTestServer(t, "secret")

	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/admin/posts", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key = %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodPost, srv.URL+"/api/upload", "x", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("legacy upload without key = %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/admin/posts", "", map[string]string{"X-API-Key": "secret"}); resp.StatusCode != http.StatusOK {
		t.Errorf("with key = %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/posts", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("public read gated: %d", resp.StatusCode)
	}
}

func TestRoutes_CORS(t *testing.T) {
	srv := newTestServer(t, "secret")

	// Browsers send preflight header names lowercased.
	preflights := []struct {
		method  string
		headers string
	}{
		{http.MethodDelete, "x-api-key"},
		{http.MethodPost, "content-type,x-api-key"},
		{http.MethodPost, "content-type"},
	}
	for _, pf := range preflights {
		resp, _ := do(t, http.MethodOptions, srv.URL+"/api/admin/posts", "", map[string]string{
			"Origin":                         "https://admin.example.com",
			"Access-Control-Request-Method":  pf.method,
			"Access-Control-Request-Headers": pf.headers,
		})
		if resp.StatusCode >= 300 {
			t.Errorf("preflight %s [%s] = %d", pf.method, pf.headers, resp.StatusCode)
			continue
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("preflight %s [%s] allow origin = %q", pf.method, pf.headers, got)
		}
	}

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/posts", "", map[string]string{"Origin": "https://x.example"})
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("simple request missing CORS header")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("missing request id")
	}
}

func TestRoutes_Sitemap(t *testing.T) {
	srv := newTestServer(t, "")
	resp, _ := do(t, http.MethodGet, srv.URL+"/api/sitemap.xml", "", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/xml" {
		t.Errorf("sitemap: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/rss.xml", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("rss: %d", resp.StatusCode)
	}
}
