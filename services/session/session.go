// Package session drives one operator-assisted pass over the identifier
// queue: the operator brings each case up in the browser by hand, the
// controller reads the page when told to and keeps the record.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webcivil-assist/internal/components/chrono"
	"webcivil-assist/internal/components/telemetry"
	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/extractor"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrNoIdentifiers = errors.New("no case identifiers in input")
	ErrInvalidState  = errors.New("action not allowed in the current session state")
)

type State int

const (
	StateIdle State = iota
	StateAwaitingOperator
	StateExtracting
	StateFinished
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingOperator:
		return "awaiting_operator"
	case StateExtracting:
		return "extracting"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type IdentifierSource interface {
	Identifiers(ctx context.Context) ([]string, error)
}

type ResultSink interface {
	Flush(ctx context.Context, records []caserecord.Record) (int, error)
}

type Clipboard interface {
	WriteAll(text string) error
}

type Journal interface {
	BeginSession(ctx context.Context, id, input string) error
	Append(ctx context.Context, sessionID string, seq int, rec caserecord.Record) error
}

type Options struct {
	Source  IdentifierSource
	Browser browser.Opener
	Sink    ResultSink
	// Clipboard and Journal are optional.
	Clipboard Clipboard
	Journal   Journal
	// Input labels the session in the journal, usually the workbook path.
	Input string

	BaseURL     string
	SettleDelay time.Duration
	FlushOnStop bool
	// Clock paces the settle delay, nil means the system clock.
	Clock chrono.API
}

// Session is the state of one pass over the queue.
type Session struct {
	ID string

	identifiers []string
	cursor      int
	records     []caserecord.Record
	browser     browser.NavigableSession
	state       State
	flushed     bool
	journal     bool
}

func (s *Session) State() State {
	return s.state
}

// Current returns the identifier the operator should be looking at.
func (s *Session) Current() (string, bool) {
	if s.cursor >= len(s.identifiers) {
		return "", false
	}
	return s.identifiers[s.cursor], true
}

// Position is the 1-based position of the current identifier.
func (s *Session) Position() int {
	return s.cursor + 1
}

func (s *Session) Total() int {
	return len(s.identifiers)
}

// Records returns a copy of the records collected so far.
func (s *Session) Records() []caserecord.Record {
	return append([]caserecord.Record(nil), s.records...)
}

// Step is the outcome of closing one identifier.
type Step struct {
	Record caserecord.Record
	Report extractor.Report

	// Next is the identifier now awaiting the operator, empty when finished.
	Next     string
	Position int
	Total    int

	Finished bool
	Saved    int
}

type StopResult struct {
	Records int
	Saved   int
	Flushed bool
}

type Controller struct {
	opts    Options
	tel     telemetry.API
	current *Session
}

func NewController(opts Options, tel telemetry.API) *Controller {
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardImpl()
	}
	return &Controller{opts: opts, tel: tel}
}

// Start loads the queue, opens the browser on the base url and copies the
// first identifier. Only one session may be live at a time, a stopped one
// can be replaced.
func (c *Controller) Start(ctx context.Context) (*Session, error) {
	if c.current != nil && c.current.state != StateStopped {
		return nil, fmt.Errorf("%w: start while %s", ErrInvalidState, c.current.state)
	}

	ctx, span := tracer.Start(ctx, "Start")
	defer span.End()

	ids, err := c.opts.Source.Identifiers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load identifiers")
		return nil, fmt.Errorf("load identifiers: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoIdentifiers
	}

	nav, err := c.opts.Browser.Open(ctx)
	if err != nil {
		c.tel.ReportBroken(report_browser_open, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open browser")
		return nil, fmt.Errorf("open browser: %w", err)
	}
	if c.opts.BaseURL != "" {
		err = nav.Navigate(ctx, c.opts.BaseURL)
		if err != nil {
			c.tel.ReportBroken(report_browser_navigate, err, c.opts.BaseURL)
			if closeErr := nav.Close(); closeErr != nil {
				c.tel.ReportWarning(report_browser_close, closeErr)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to navigate")
			return nil, fmt.Errorf("navigate to %s: %w", c.opts.BaseURL, err)
		}
	}

	s := &Session{
		ID:          uuid.NewString(),
		identifiers: ids,
		browser:     nav,
		state:       StateAwaitingOperator,
	}
	if c.opts.Journal != nil {
		err = c.opts.Journal.BeginSession(ctx, s.ID, c.opts.Input)
		if err != nil {
			c.tel.ReportWarning(report_journal_begin, err)
		} else {
			s.journal = true
		}
	}
	c.current = s

	span.SetAttributes(
		attribute.String("session", s.ID),
		attribute.Int("identifiers", len(ids)),
	)
	c.tel.ReportInfo(report_session_start, s.ID, len(ids))
	c.copyCurrent(s)
	return s, nil
}

func (c *Controller) copyCurrent(s *Session) {
	if c.opts.Clipboard == nil {
		return
	}
	id, ok := s.Current()
	if !ok {
		return
	}
	err := c.opts.Clipboard.WriteAll(id)
	if err != nil {
		c.tel.ReportWarning(report_clipboard_write, err)
	}
}

func (c *Controller) settle(ctx context.Context) error {
	if c.opts.SettleDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.opts.Clock.After(c.opts.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkReady extracts the page the operator has open for the current
// identifier and moves on.
func (c *Controller) MarkReady(ctx context.Context, s *Session) (Step, error) {
	if s.state != StateAwaitingOperator {
		return Step{}, fmt.Errorf("%w: ready while %s", ErrInvalidState, s.state)
	}
	id, _ := s.Current()

	ctx, span := tracer.Start(ctx, "MarkReady")
	defer span.End()
	span.SetAttributes(attribute.String("index_number", id))

	s.state = StateExtracting
	err := c.settle(ctx)
	if err != nil {
		s.state = StateAwaitingOperator
		return Step{}, err
	}

	var (
		rec    caserecord.Record
		report extractor.Report
	)
	snap, err := s.browser.Snapshot(ctx)
	if err != nil {
		c.tel.ReportWarning(report_browser_snapshot, err, id)
		span.RecordError(err)
		rec = caserecord.New(id)
	} else {
		rec, report = extractor.Extract(ctx, snap, id)
		if report.ParseError != nil {
			c.tel.ReportWarning(report_extract_parse, report.ParseError, id)
		}
		c.tel.ReportDebug(report_case_extracted, id, report.Count(), snap.URL)
	}
	return c.advance(ctx, s, rec, report)
}

// Skip closes the current identifier with an empty record.
func (c *Controller) Skip(ctx context.Context, s *Session) (Step, error) {
	if s.state != StateAwaitingOperator {
		return Step{}, fmt.Errorf("%w: skip while %s", ErrInvalidState, s.state)
	}
	id, _ := s.Current()
	c.tel.ReportDebug(report_case_skipped, id)
	return c.advance(ctx, s, caserecord.New(id), extractor.Report{})
}

func (c *Controller) advance(ctx context.Context, s *Session, rec caserecord.Record, report extractor.Report) (Step, error) {
	s.records = append(s.records, rec)
	if s.journal {
		err := c.opts.Journal.Append(ctx, s.ID, len(s.records), rec)
		if err != nil {
			c.tel.ReportWarning(report_journal_append, err, rec.Value(caserecord.IndexNumber))
		}
	}
	c.tel.ReportInfo(report_case_closed, rec.Value(caserecord.IndexNumber), s.Position(), s.Total())
	c.tel.ReportCount(report_records_collected, int64(len(s.records)))
	s.cursor++

	step := Step{
		Record:   rec,
		Report:   report,
		Position: s.Position(),
		Total:    s.Total(),
	}
	if next, ok := s.Current(); ok {
		s.state = StateAwaitingOperator
		step.Next = next
		c.copyCurrent(s)
		return step, nil
	}

	s.state = StateFinished
	step.Finished = true
	step.Position = s.Total()
	res, err := c.Stop(ctx, s)
	step.Saved = res.Saved
	return step, err
}

// Stop closes the browser and, unless the session already saved, writes
// what has been collected. The session always ends Stopped.
func (c *Controller) Stop(ctx context.Context, s *Session) (StopResult, error) {
	res := StopResult{Records: len(s.records)}
	if s.state == StateStopped {
		return res, nil
	}
	defer func() {
		s.state = StateStopped
	}()

	if s.browser != nil {
		err := s.browser.Close()
		if err != nil {
			c.tel.ReportBroken(report_browser_close, err)
		}
		s.browser = nil
	}

	shouldFlush := s.state == StateFinished || c.opts.FlushOnStop
	if !shouldFlush || s.flushed || len(s.records) == 0 {
		return res, nil
	}

	n, err := c.opts.Sink.Flush(ctx, s.records)
	if err != nil {
		c.tel.ReportBroken(report_sink_flush, err, len(s.records))
		return res, fmt.Errorf("save results: %w", err)
	}
	s.flushed = true
	res.Saved = n
	res.Flushed = true
	return res, nil
}
