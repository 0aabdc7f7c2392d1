// Package extractor fills a case record from whatever page the operator has
// loaded. It is a best-effort heuristic: the portal's markup is unversioned,
// so every strategy tolerates missing elements and simply leaves fields
// absent.
package extractor

import (
	"context"
	"strings"

	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("webcivil.lib.extractor")

// Strategy names one pass over the page.
type Strategy string

const (
	StrategyTable   Strategy = "table"
	StrategyText    Strategy = "text"
	StrategyElement Strategy = "element"
)

// Report describes what a single extraction did.
type Report struct {
	// Filled lists the fields each strategy wrote, in the order written.
	Filled map[Strategy][]caserecord.Field
	// ParseError is set when the snapshot html could not be parsed, in which
	// case only the whole-page text search ran.
	ParseError error
}

func (r Report) record(s Strategy, f caserecord.Field) {
	r.Filled[s] = append(r.Filled[s], f)
}

// Count returns how many fields were filled across all strategies.
func (r Report) Count() int {
	n := 0
	for _, fields := range r.Filled {
		n += len(fields)
	}
	return n
}

// page is a parsed snapshot.
type page struct {
	doc  *goquery.Document
	text string
}

func load(snap browser.Snapshot) (page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return page{text: snap.Text}, err
	}
	text := snap.Text
	if strings.TrimSpace(text) == "" {
		body := doc.Find("body")
		if body.Length() > 0 {
			text = htmlutil.SelectionText(body)
		} else {
			text = htmlutil.VisibleText(doc.Get(0))
		}
	}
	return page{doc: doc, text: text}, nil
}

// Extract runs the table scan, the whole-page text search and the labeled
// element lookup, in that order, against one snapshot.
func Extract(ctx context.Context, snap browser.Snapshot, indexNumber string) (caserecord.Record, Report) {
	rec := caserecord.New(indexNumber)
	report := Apply(ctx, snap, &rec)
	return rec, report
}

// Apply runs all strategies against an existing record. No strategy ever
// overwrites a field that is already present.
func Apply(ctx context.Context, snap browser.Snapshot, rec *caserecord.Record) Report {
	ctx, span := tracer.Start(ctx, "Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("index_number", rec.Value(caserecord.IndexNumber)),
		attribute.String("url", snap.URL),
	)

	report := Report{Filled: map[Strategy][]caserecord.Field{}}

	p, err := load(snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		report.ParseError = err
	}

	if p.doc != nil {
		scanTables(ctx, p.doc, rec, report)
	}
	searchText(ctx, p.text, rec, report)
	if p.doc != nil {
		lookupElements(ctx, p.doc, rec, report)
	}

	span.SetAttributes(attribute.Int("fields_filled", report.Count()))
	return report
}
