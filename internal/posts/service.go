package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/jugnunagar/folio/internal/events"
	"go.uber.org/zap"
)

type Service struct {
	store     Store
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(store Store, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{store: store, publisher: publisher, logger: logger}
}

// ListPublished is the public listing. Unpublished posts never leave here.
func (s *Service) ListPublished(ctx context.Context) []Post {
	return Published(s.store.Load(ctx))
}

func (s *Service) ListAll(ctx context.Context) []Post {
	return s.store.Load(ctx)
}

// GetPublished resolves a slug or id for the public site. A draft answers
// the same as a missing post.
func (s *Service) GetPublished(ctx context.Context, key string) (Post, error) {
	post, ok := Find(s.store.Load(ctx), key)
	if !ok || !post.Published {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func Validate(post Post) error {
	if strings.TrimSpace(post.ID) == "" || strings.TrimSpace(post.Title) == "" {
		return ErrMissingFields
	}
	return nil
}

// SavePost upserts the full document and announces it when the save makes it
// publicly visible for the first time since it was last hidden.
func (s *Service) SavePost(ctx context.Context, post Post) (Post, error) {
	if err := Validate(post); err != nil {
		return Post{}, err
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	wasPublished := false
	if post.Published {
		current := s.store.Load(ctx)
		if i := indexOf(current, post.ID); i >= 0 {
			wasPublished = current[i].Published
		}
	}

	if err := s.store.Upsert(ctx, post); err != nil {
		s.logger.Error("save post failed", zap.String("id", post.ID), zap.Error(err))
		return Post{}, err
	}
	s.logger.Info("post saved",
		zap.String("id", post.ID),
		zap.String("title", post.Title),
		zap.Bool("published", post.Published),
	)

	if post.Published && !wasPublished {
		e := events.NewPostPublished(post.ID, post.Slug, post.Title, post.Summary())
		if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
			s.logger.Warn("publish event failed", zap.String("id", post.ID), zap.Error(err))
		}
	}
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("delete post failed", zap.String("id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("post deleted", zap.String("id", id))
	return nil
}
