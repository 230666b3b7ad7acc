package events

import "context"

var _ Publisher = NoopPublisher{}

// NoopPublisher drops every event. It is used when RABBITMQ_URL is unset or
// the broker was unreachable at startup.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostPublished(context.Context, PostPublished) error {
	return nil
}
