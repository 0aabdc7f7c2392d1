package browser

import (
	"context"
	"errors"
	"os"
	"sync"
)

var ErrClosed = errors.New("browser session is closed")

// Static is a session over a fixed document. It is used for saved pages and
// in tests.
type Static struct {
	mu      sync.Mutex
	html    string
	text    string
	url     string
	visited []string
	closed  bool
}

func NewStatic(url, html string) *Static {
	return &Static{url: url, html: html}
}

// NewStaticFile reads a saved page from disk.
func NewStaticFile(path string) (*Static, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStatic("file://"+path, string(contents)), nil
}

// SetPage replaces the document, as if the operator navigated elsewhere.
func (s *Static) SetPage(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html = html
	s.text = ""
}

// SetText overrides the rendered body text returned in snapshots.
func (s *Static) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *Static) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.url = url
	s.visited = append(s.visited, url)
	return nil
}

func (s *Static) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	return Snapshot{URL: s.url, HTML: s.html, Text: s.text}, nil
}

func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Visited lists every url passed to Navigate.
func (s *Static) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

func (s *Static) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
