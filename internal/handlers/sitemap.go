package handlers

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/jugnunagar/folio/internal/posts"
	"go.uber.org/zap"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
	LastMod    string `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type staticPage struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []staticPage{
	{"/", "weekly", "1.0"},
	{"/blog", "weekly", "0.9"},
	{"/services", "monthly", "0.8"},
	{"/about", "monthly", "0.7"},
	{"/contact", "monthly", "0.7"},
	{"/projects", "monthly", "0.8"},
	{"/node-developer", "monthly", "0.6"},
}

type SitemapHandler struct {
	svc     *posts.Service
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewSitemapHandler(svc *posts.Service, baseURL string, logger *zap.Logger) *SitemapHandler {
	return &SitemapHandler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

func (h *SitemapHandler) Sitemap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := h.now().UTC().Format(time.DateOnly)

		set := urlSet{XMLNS: sitemapNS}
		for _, p := range staticPages {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.baseURL + p.path,
				ChangeFreq: p.changeFreq,
				Priority:   p.priority,
				LastMod:    today,
			})
		}
		for _, post := range h.svc.ListPublished(r.Context()) {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.baseURL + "/blog/" + post.Key(),
				ChangeFreq: "monthly",
				Priority:   "0.7",
				LastMod:    postDay(post.Date, today),
			})
		}
		h.writeXML(w, set, "Failed to generate sitemap")
	}
}

func (h *SitemapHandler) Index() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.writeXML(w, sitemapIndex{
			XMLNS: sitemapNS,
			Sitemaps: []sitemapRef{{
				Loc:     h.baseURL + "/api/sitemap.xml",
				LastMod: h.now().UTC().Format(time.DateOnly),
			}},
		}, "Failed to generate sitemap index")
	}
}

func (h *SitemapHandler) writeXML(w http.ResponseWriter, doc any, failure string) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		h.logger.Error("sitemap encode failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, failure, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// postDay reduces a client-supplied ISO date to its calendar day.
func postDay(date, fallback string) string {
	if t, ok := parseDate(date); ok {
		return t.Format(time.DateOnly)
	}
	return fallback
}

func parseDate(date string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
