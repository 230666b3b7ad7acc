package events

import "time"

const TypePostPublished = "post.published"

type PostPublishedPayload struct {
	PostID  string `json:"post_id"`
	Slug    string `json:"slug,omitempty"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(postID, slug, title, excerpt string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:  postID,
			Slug:    slug,
			Title:   title,
			Excerpt: excerpt,
		},
	}
}
