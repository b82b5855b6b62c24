package service

import (
	"context"
	"errors"
)

// ErrFeedUnavailable is returned when the external feed cannot be read
var ErrFeedUnavailable = errors.New("price paid feed unavailable")

// FeedSource streams raw price paid lines from an external feed
type FeedSource interface {
	// Open starts streaming the feed. The caller must Close the returned stream.
	Open(ctx context.Context) (LineStream, error)
}

// LineStream yields one raw feed line at a time
type LineStream interface {
	// Next advances to the next line and reports whether one is available
	Next() bool

	// Line returns the current line
	Line() string

	// Err returns the first error hit while streaming, if any
	Err() error

	// Close releases the underlying connection
	Close() error
}
