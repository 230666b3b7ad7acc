package posts

import "errors"

var (
	ErrNotFound        = errors.New("post not found")
	ErrMissingFields   = errors.New("missing required fields")
	ErrVersionConflict = errors.New("collection changed since it was read")
	ErrNoCollection    = errors.New("no stored collection")
)
