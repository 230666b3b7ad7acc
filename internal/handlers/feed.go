package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/jugnunagar/folio/internal/posts"
	"go.uber.org/zap"
)

const feedItems = 20

type FeedHandler struct {
	svc     *posts.Service
	baseURL string
	owner   string
	logger  *zap.Logger
	now     func() time.Time
}

func NewFeedHandler(svc *posts.Service, baseURL, owner string, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		owner:   owner,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *FeedHandler) RSS() http.HandlerFunc {
	return h.serve("application/rss+xml", (*feeds.Feed).ToRss)
}

func (h *FeedHandler) Atom() http.HandlerFunc {
	return h.serve("application/atom+xml", (*feeds.Feed).ToAtom)
}

func (h *FeedHandler) serve(contentType string, render func(*feeds.Feed) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := render(h.build(h.svc.ListPublished(r.Context())))
		if err != nil {
			h.logger.Error("feed render failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to generate feed", err.Error())
			return
		}
		w.Header().Set("Content-Type", contentType+"; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// build keeps the newest posts first as stored; the admin prepends new ones.
func (h *FeedHandler) build(list []posts.Post) *feeds.Feed {
	now := h.now().UTC()
	feed := &feeds.Feed{
		Title:       h.owner + " - Blog",
		Link:        &feeds.Link{Href: h.baseURL + "/blog"},
		Description: "Articles by " + h.owner,
		Author:      &feeds.Author{Name: h.owner},
		Created:     now,
	}
	if len(list) > feedItems {
		list = list[:feedItems]
	}
	for _, p := range list {
		link := h.baseURL + "/blog/" + p.Key()
		created := now
		if t, ok := parseDate(p.Date); ok {
			created = t
		}
		item := &feeds.Item{
			Id:          link,
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Summary(),
			Content:     p.ContentHTML,
			Created:     created,
		}
		if p.Cover != "" {
			item.Enclosure = &feeds.Enclosure{Url: p.Cover, Type: coverType(p.Cover), Length: "0"}
		}
		feed.Items = append(feed.Items, item)
	}
	if len(feed.Items) > 0 {
		feed.Updated = feed.Items[0].Created
	}
	return feed
}

func coverType(url string) string {
	lower := strings.ToLower(url)
	for ct, ext := range coverExt {
		if strings.HasSuffix(lower, ext) {
			return ct
		}
	}
	return "image/jpeg"
}
