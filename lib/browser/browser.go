package browser

import "context"

// Snapshot is the state of the page the operator is looking at.
type Snapshot struct {
	URL string
	// HTML is the serialized DOM of the page.
	HTML string
	// Text is the rendered text of <body>, it may be empty when the session
	// cannot render text, in which case it is derived from HTML.
	Text string
}

// NavigableSession is a browser window the operator drives by hand.
type NavigableSession interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (Snapshot, error)
	Close() error
}

// Opener creates a session, one per run.
type Opener interface {
	Open(ctx context.Context) (NavigableSession, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (NavigableSession, error)

func (f OpenerFunc) Open(ctx context.Context) (NavigableSession, error) {
	return f(ctx)
}
