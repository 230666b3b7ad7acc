package posts

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryMedium_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	seed := []Post{{ID: "a", Title: "A", Tags: []string{"go"}}}
	m := NewMemoryMedium(seed)

	seed[0].Tags[0] = "changed"
	list, version, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if list[0].Tags[0] != "go" {
		t.Errorf("seed mutation leaked: %v", list[0].Tags)
	}

	list[0].Title = "mutated"
	again, _, _ := m.Read(ctx)
	if again[0].Title != "A" {
		t.Errorf("read mutation leaked: %q", again[0].Title)
	}

	if err := m.Write(ctx, list, version); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := m.Write(ctx, list, version); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("second write with old version: %v", err)
	}
}

func TestMemoryMedium_NilSeed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium(nil)
	if _, _, err := m.Read(ctx); !errors.Is(err, ErrNoCollection) {
		t.Errorf("err = %v", err)
	}
	if err := m.Write(ctx, []Post{}, ""); err != nil {
		t.Fatalf("Write: %v", err)
	}
	list, version, err := m.Read(ctx)
	if err != nil || len(list) != 0 || version == "" {
		t.Errorf("list=%v version=%q err=%v", list, version, err)
	}
}
