package events

import "context"

// Publisher announces post lifecycle events to the site exchange. Callers
// treat failures as non-fatal.
type Publisher interface {
	// PublishPostPublished sends post.published when a post first becomes
	// visible on the public blog. The owner worker turns it into an email.
	PublishPostPublished(ctx context.Context, e PostPublished) error
}
