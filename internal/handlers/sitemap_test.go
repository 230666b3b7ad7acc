package handlers

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jugnunagar/folio/internal/posts"
	"go.uber.org/zap"
)

func newSitemapHandler(t *testing.T, seed ...posts.Post) *SitemapHandler {
	svc := posts.NewService(seededStore(t, seed...), nil, zap.NewNop())
	h := NewSitemapHandler(svc, "https://site.dev/", zap.NewNop())
	h.now = func() time.Time { return time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC) }
	return h
}

func TestSitemapHandler_Sitemap(t *testing.T) {
	h := newSitemapHandler(t,
		posts.Post{ID: "1", Slug: "hello", Title: "Hello", Date: "2024-11-02T08:30:00.000Z", Published: true},
		posts.Post{ID: "2", Title: "No slug", Date: "not a date", Published: true},
		posts.Post{ID: "3", Slug: "draft", Title: "Draft"},
	)

	rec := httptest.NewRecorder()
	h.Sitemap().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sitemap.xml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("cache control = %q", cc)
	}
	if !strings.HasPrefix(rec.Body.String(), "<?xml") {
		t.Errorf("missing xml header")
	}

	var set urlSet
	if err := xml.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(set.URLs) != len(staticPages)+2 {
		t.Fatalf("urls = %d, want %d", len(set.URLs), len(staticPages)+2)
	}
	if set.URLs[0].Loc != "https://site.dev/" || set.URLs[0].Priority != "1.0" {
		t.Errorf("home = %+v", set.URLs[0])
	}

	byLoc := map[string]sitemapURL{}
	for _, u := range set.URLs {
		byLoc[u.Loc] = u
	}
	if u := byLoc["https://site.dev/blog/hello"]; u.LastMod != "2024-11-02" || u.ChangeFreq != "monthly" {
		t.Errorf("post by slug = %+v", u)
	}
	if u := byLoc["https://site.dev/blog/2"]; u.LastMod != "2025-03-04" {
		t.Errorf("post by id = %+v", u)
	}
	if _, ok := byLoc["https://site.dev/blog/draft"]; ok {
		t.Error("draft leaked into sitemap")
	}
}

func TestSitemapHandler_Index(t *testing.T) {
	h := newSitemapHandler(t)

	rec := httptest.NewRecorder()
	h.Index().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sitemap-index.xml", nil))

	var idx sitemapIndex
	if err := xml.Unmarshal(rec.Body.Bytes(), &idx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(idx.Sitemaps) != 1 || idx.Sitemaps[0].Loc != "https://site.dev/api/sitemap.xml" || idx.Sitemaps[0].LastMod != "2025-03-04" {
		t.Errorf("index = %+v", idx)
	}
}
