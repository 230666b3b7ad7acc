package posts

import (
	"context"
	"strconv"
	"sync"
)

var _ Medium = (*MemoryMedium)(nil)

// MemoryMedium keeps the collection in process memory. Contents are lost on
// restart.
type MemoryMedium struct {
	mu      sync.Mutex
	posts   []Post
	present bool
	version uint64
}

// NewMemoryMedium starts from seed; a nil seed means no collection yet.
func NewMemoryMedium(seed []Post) *MemoryMedium {
	return &MemoryMedium{posts: clonePosts(seed), present: seed != nil}
}

func (m *MemoryMedium) Name() string { return "memory" }

func (m *MemoryMedium) Init(context.Context) error { return nil }

func (m *MemoryMedium) Read(context.Context) ([]Post, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil, "", ErrNoCollection
	}
	return clonePosts(m.posts), m.currentVersion(), nil
}

func (m *MemoryMedium) Write(_ context.Context, list []Post, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentVersion() != version {
		return ErrVersionConflict
	}
	m.posts = normalize(clonePosts(list))
	m.present = true
	m.version++
	return nil
}

func (m *MemoryMedium) currentVersion() string {
	if !m.present {
		return ""
	}
	return strconv.FormatUint(m.version+1, 10)
}

func clonePosts(list []Post) []Post {
	if list == nil {
		return nil
	}
	out := make([]Post, len(list))
	for i, p := range list {
		if p.Tags != nil {
			p.Tags = append([]string(nil), p.Tags...)
		}
		out[i] = p
	}
	return out
}
