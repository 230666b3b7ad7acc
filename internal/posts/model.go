package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const summaryRunes = 160

var plainText = bluemonday.StrictPolicy()

// Post is a blog article. IDs are minted by the admin client and never change.
type Post struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug,omitempty"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt,omitempty"`
	ContentHTML string   `json:"contentHtml"`
	Cover       string   `json:"cover,omitempty"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	ReadMinutes int      `json:"readMinutes"`
	Published   bool     `json:"published"`
}

// UnmarshalJSON accepts readMinutes as any JSON number, or a numeric string,
// and rounds it to whole minutes. The admin form sends whatever was typed.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	aux := struct {
		*plain
		ReadMinutes json.RawMessage `json:"readMinutes"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	minutes, err := parseMinutes(aux.ReadMinutes)
	if err != nil {
		return err
	}
	p.ReadMinutes = minutes
	return nil
}

func parseMinutes(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, fmt.Errorf("readMinutes: not a number: %s", raw)
		}
		if s = strings.TrimSpace(s); s == "" {
			return 0, nil
		}
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, fmt.Errorf("readMinutes: not a number: %q", s)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, nil
	}
	return int(math.Round(f)), nil
}

// Key is the path segment public links use for the post.
func (p Post) Key() string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.ID
}

// Summary returns the excerpt, or a plain-text prefix of the content when the
// excerpt is empty.
func (p Post) Summary() string {
	if s := strings.TrimSpace(p.Excerpt); s != "" {
		return s
	}
	text := strings.Join(strings.Fields(html.UnescapeString(plainText.Sanitize(p.ContentHTML))), " ")
	runes := []rune(text)
	if len(runes) <= summaryRunes {
		return text
	}
	cut := summaryRunes
	for i := summaryRunes; i > summaryRunes/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsPunct) + "…"
}

func normalize(list []Post) []Post {
	for i := range list {
		if list[i].Tags == nil {
			list[i].Tags = []string{}
		}
	}
	return list
}

// Published keeps the posts visible on public read paths.
func Published(list []Post) []Post {
	out := make([]Post, 0, len(list))
	for _, p := range list {
		if p.Published {
			out = append(out, p)
		}
	}
	return out
}

// Find resolves key against slugs first and ids second.
func Find(list []Post, key string) (Post, bool) {
	if key == "" {
		return Post{}, false
	}
	for _, p := range list {
		if p.Slug == key {
			return p, true
		}
	}
	for _, p := range list {
		if p.ID == key {
			return p, true
		}
	}
	return Post{}, false
}

func indexOf(list []Post, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
