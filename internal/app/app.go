package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jugnunagar/folio/internal/config"
	"github.com/jugnunagar/folio/internal/events"
	"github.com/jugnunagar/folio/internal/handlers"
	"github.com/jugnunagar/folio/internal/mailer"
	"github.com/jugnunagar/folio/internal/posts"
	"github.com/jugnunagar/folio/internal/routes"
	"github.com/jugnunagar/folio/internal/storage"
	"go.uber.org/zap"
)

// App is the wired API process.
type App struct {
	Handler http.Handler
	Store   *posts.CollectionStore

	closers []func() error
}

// New connects every configured backend, initializes the post store once and
// builds the HTTP handler. Optional backends that fail to connect are logged
// and left out; the selected store medium is required.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	st, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.StoreMedium == config.MediumPostgres {
		db, err = posts.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	store, err := openStore(ctx, cfg, st, db, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store
	logger.Info("post store ready", zap.String("medium", store.MediumName()))

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, publish events disabled", zap.Error(err))
		} else {
			publisher = p
			a.closers = append(a.closers, p.Close)
		}
	}

	svc := posts.NewService(store, publisher, logger.Named("posts"))
	relay := mailer.NewRelay(mailer.NewSMTPMailer(cfg), cfg.ToEmail, cfg.OwnerName)

	a.Handler = routes.New(routes.Handlers{
		Posts:   handlers.NewPostsHandler(svc, logger),
		Contact: handlers.NewContactHandler(relay, cfg.MailerConfigured(), logger.Named("contact")),
		Upload:  handlers.NewUploadHandler(st, logger.Named("upload")),
		Sitemap: handlers.NewSitemapHandler(svc, cfg.SiteURL, logger),
		Feed:    handlers.NewFeedHandler(svc, cfg.SiteURL, cfg.OwnerName, logger),
		Health: handlers.Health(&handlers.HealthDeps{
			Store:       store,
			DB:          db,
			Storage:     st,
			RabbitMQURL: cfg.RabbitMQURL,
		}),
		Storage: handlers.StorageInfo(store),
	}, routes.Options{
		AdminAPIKey: cfg.AdminAPIKey,
		CORSOrigins: cfg.CORSOrigins,
	}, logger.Named("http"))

	return a, nil
}

// Close releases backend connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newObjectStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return storage.NewS3Storage(client, storage.S3Options{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.AWSRegion,
		Endpoint:  cfg.S3Endpoint,
		PublicURL: cfg.S3PublicURL,
	}), nil
}

// openStore builds and initializes the configured medium. A file medium that
// cannot be prepared degrades to memory seeded from whatever the data file
// holds.
func openStore(ctx context.Context, cfg *config.Config, st storage.Storage, db *sql.DB, logger *zap.Logger) (*posts.CollectionStore, error) {
	medium, err := selectMedium(cfg, st, db)
	if err != nil {
		return nil, err
	}

	store := posts.NewStore(medium, logger)
	err = store.Initialize(ctx)
	if err == nil {
		return store, nil
	}
	if cfg.StoreMedium != config.MediumFile {
		return nil, err
	}

	logger.Warn("file medium unavailable, using memory", zap.String("path", cfg.DataFile), zap.Error(err))
	seed, seedErr := posts.ReadSeed(cfg.DataFile)
	if seedErr != nil {
		logger.Warn("seed unreadable, starting empty", zap.Error(seedErr))
		seed = []posts.Post{}
	}
	store = posts.NewStore(posts.NewMemoryMedium(seed), logger)
	return store, store.Initialize(ctx)
}

func selectMedium(cfg *config.Config, st storage.Storage, db *sql.DB) (posts.Medium, error) {
	switch cfg.StoreMedium {
	case config.MediumFile:
		return posts.NewFileMedium(cfg.DataFile), nil
	case config.MediumMemory:
		seed, err := posts.ReadSeed(cfg.DataFile)
		if err != nil {
			seed = []posts.Post{}
		}
		return posts.NewMemoryMedium(seed), nil
	case config.MediumS3:
		if st == nil {
			return nil, errors.New("s3 medium selected without S3_BUCKET")
		}
		return posts.NewBlobMedium(st, cfg.PostsObjectKey), nil
	case config.MediumPostgres:
		if db == nil {
			return nil, errors.New("postgres medium selected without a database")
		}
		return posts.NewPostgresMedium(db, cfg.PostsObjectKey), nil
	default:
		return nil, fmt.Errorf("unknown store medium %q", cfg.StoreMedium)
	}
}
