package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jugnunagar/folio/internal/config"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreMedium:    config.MediumFile,
		DataFile:       filepath.Join(t.TempDir(), "data", "blog-posts.json"),
		PostsObjectKey: "data/blog-posts.json",
		CORSOrigins:    []string{"*"},
		SiteURL:        "https://site.dev",
		SMTPPort:       587,
	}
}

func TestNew_FileMedium(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Store.MediumName() != "file" {
		t.Errorf("medium = %q", a.Store.MediumName())
	}

	body := `{"id":"1","title":"Hello","published":true}`
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/posts", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("save = %d: %s", rec.Code, rec.Body.String())
	}

	data, err := os.ReadFile(cfg.DataFile)
	if err != nil {
		t.Fatalf("data file not written: %v", err)
	}
	if !strings.Contains(string(data), `"id": "1"`) {
		t.Errorf("data file = %s", data)
	}
}

func TestNew_FileFallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.DataFile = filepath.Join(blocker, "blog-posts.json")

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Store.MediumName() != "memory" {
		t.Errorf("medium = %q, want memory", a.Store.MediumName())
	}
}

func TestNew_MemorySeededFromDataFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreMedium = config.MediumMemory
	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DataFile, []byte(`[{"id":"s","title":"Seed","published":true}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/s", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("seeded post = %d", rec.Code)
	}
}

func TestSelectMedium_Misconfigured(t *testing.T) {
	for _, medium := range []string{config.MediumS3, config.MediumPostgres, "floppy"} {
		cfg := testConfig(t)
		cfg.StoreMedium = medium
		if _, err := selectMedium(cfg, nil, nil); err == nil {
			t.Errorf("%s: expected error", medium)
		}
	}
}
