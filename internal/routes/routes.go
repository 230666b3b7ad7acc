package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jugnunagar/folio/internal/handlers"
	"github.com/jugnunagar/folio/internal/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Handlers struct {
	Posts   *handlers.PostsHandler
	Contact *handlers.ContactHandler
	Upload  *handlers.UploadHandler
	Sitemap *handlers.SitemapHandler
	Feed    *handlers.FeedHandler
	Health  http.HandlerFunc
	Storage http.HandlerFunc
}

type Options struct {
	AdminAPIKey string
	CORSOrigins []string
}

// New builds the full HTTP surface: the /api tree behind CORS, request ids,
// request logging and panic recovery.
func New(h Handlers, opts Options, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = handlers.NotFound()
	router.MethodNotAllowedHandler = handlers.MethodNotAllowed()

	adminOnly := middleware.AdminKey(opts.AdminAPIKey, logger)

	api := router.PathPrefix("/api").Subrouter()
	handle(api, "/health", on(http.MethodGet, h.Health))
	handle(api, "/posts", on(http.MethodGet, h.Posts.List()))
	handle(api, "/posts/{key}", on(http.MethodGet, h.Posts.Get()))
	handle(api, "/contact", on(http.MethodPost, h.Contact.Send()))
	handle(api, "/sitemap.xml", on(http.MethodGet, h.Sitemap.Sitemap()))
	handle(api, "/sitemap-index.xml", on(http.MethodGet, h.Sitemap.Index()))
	handle(api, "/rss.xml", on(http.MethodGet, h.Feed.RSS()))
	handle(api, "/atom.xml", on(http.MethodGet, h.Feed.Atom()))

	// Older admin builds post covers here.
	handle(api, "/upload", on(http.MethodPost, adminOnly(h.Upload.Upload())))

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)
	handle(admin, "/posts",
		on(http.MethodGet, h.Posts.AdminList()),
		on(http.MethodPost, h.Posts.Save()),
	)
	handle(admin, "/posts/{id}", on(http.MethodDelete, h.Posts.Delete()))
	handle(admin, "/upload", on(http.MethodPost, h.Upload.Upload()))
	handle(admin, "/storage", on(http.MethodGet, h.Storage))

	var handler http.Handler = router
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	return cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         600,
	}).Handler(handler)
}

type methodRoute struct {
	method  string
	handler http.Handler
}

func on(method string, h http.Handler) methodRoute {
	return methodRoute{method: method, handler: h}
}

// handle registers path for the given methods and answers any other method
// with a JSON 405. mux loses the method-mismatch state across nested
// subrouters, so the router-level MethodNotAllowedHandler alone would
// report 404.
func handle(r *mux.Router, path string, routes ...methodRoute) {
	for _, rt := range routes {
		r.Handle(path, rt.handler).Methods(rt.method)
	}
	r.Handle(path, handlers.MethodNotAllowed())
}
