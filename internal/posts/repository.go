package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const writeAttempts = 3

// Store is the post collection contract the API depends on.
type Store interface {
	Load(ctx context.Context) []Post
	Upsert(ctx context.Context, post Post) error
	Remove(ctx context.Context, id string) error
}

// Medium persists the whole collection as one document. Read reports an
// opaque version of what it returned; Write only succeeds when the stored
// version still equals the one passed in, and returns ErrVersionConflict
// otherwise. An absent collection has the empty version.
type Medium interface {
	Name() string
	Init(ctx context.Context) error
	Read(ctx context.Context) ([]Post, string, error)
	Write(ctx context.Context, list []Post, version string) error
}

var _ Store = (*CollectionStore)(nil)

// CollectionStore implements Store over a Medium. It holds no copy of the
// collection between calls.
type CollectionStore struct {
	medium Medium
	logger *zap.Logger
}

func NewStore(medium Medium, logger *zap.Logger) *CollectionStore {
	return &CollectionStore{
		medium: medium,
		logger: logger.With(zap.String("medium", medium.Name())),
	}
}

// Initialize prepares the medium. Call it once before serving requests.
func (s *CollectionStore) Initialize(ctx context.Context) error {
	if err := s.medium.Init(ctx); err != nil {
		return fmt.Errorf("init %s medium: %w", s.medium.Name(), err)
	}
	return nil
}

func (s *CollectionStore) MediumName() string {
	return s.medium.Name()
}

// Snapshot returns the collection and its version without absorbing errors.
func (s *CollectionStore) Snapshot(ctx context.Context) ([]Post, string, error) {
	list, version, err := s.medium.Read(ctx)
	if errors.Is(err, ErrNoCollection) {
		return []Post{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return normalize(list), version, nil
}

// Load never fails: an unreadable collection is reported as empty.
func (s *CollectionStore) Load(ctx context.Context) []Post {
	list, _, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("load posts failed, serving empty collection", zap.Error(err))
		return []Post{}
	}
	return list
}

// Upsert replaces the post with the same id in place or prepends it.
func (s *CollectionStore) Upsert(ctx context.Context, post Post) error {
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return s.update(ctx, func(list []Post) ([]Post, error) {
		if i := indexOf(list, post.ID); i >= 0 {
			list[i] = post
			return list, nil
		}
		return append([]Post{post}, list...), nil
	})
}

// Remove deletes every post with the given id. ErrNotFound is returned, and
// nothing is written, when no post matched.
func (s *CollectionStore) Remove(ctx context.Context, id string) error {
	return s.update(ctx, func(list []Post) ([]Post, error) {
		kept := make([]Post, 0, len(list))
		for _, p := range list {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(list) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}

func (s *CollectionStore) update(ctx context.Context, mutate func([]Post) ([]Post, error)) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		var (
			list    []Post
			version string
		)
		list, version, err = s.Snapshot(ctx)
		if err != nil {
			// Writing over a collection we could not read would drop it.
			return fmt.Errorf("read posts: %w", err)
		}

		list, err = mutate(list)
		if err != nil {
			return err
		}

		err = s.medium.Write(ctx, list, version)
		if err == nil {
			s.logger.Debug("posts persisted", zap.Int("count", len(list)), zap.Int("attempt", attempt))
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("write posts: %w", err)
		}
		s.logger.Warn("concurrent write detected, retrying", zap.Int("attempt", attempt))
	}
	return fmt.Errorf("write posts: %w", err)
}

func encode(list []Post) ([]byte, error) {
	if list == nil {
		list = []Post{}
	}
	return json.MarshalIndent(normalize(list), "", "  ")
}

func decode(data []byte) ([]Post, error) {
	var list []Post
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	if list == nil {
		list = []Post{}
	}
	return list, nil
}
