package extractor

import (
	"context"
	"fmt"
	"strings"

	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type elementLookup struct {
	field      caserecord.Field
	candidates []string
}

var elementLookups = []elementLookup{
	{field: caserecord.CaseName, candidates: []string{"caseName", "case-name", "caption"}},
	{field: caserecord.Judge, candidates: []string{"judge", "hon", "honorable"}},
	{field: caserecord.Part, candidates: []string{"part", "room", "courtroom"}},
	{field: caserecord.Classification, candidates: []string{"classification", "case-type", "type"}},
}

// byID finds the first element with the given id. An attribute selector is
// used so ids that are not valid css identifiers still work.
func byID(doc *goquery.Document, id string) *goquery.Selection {
	return doc.Find(fmt.Sprintf(`[id=%q]`, id)).First()
}

func byClass(doc *goquery.Document, class string) *goquery.Selection {
	return doc.Find(fmt.Sprintf(`[class~=%q]`, class)).First()
}

// candidateValue tries one candidate: an element with that id (its text,
// else its value attribute), then an element with that class (its text).
func candidateValue(doc *goquery.Document, candidate string) string {
	if el := byID(doc, candidate); el.Length() > 0 {
		text := htmlutil.Clean(htmlutil.SelectionText(el))
		if text == "" {
			text = strings.TrimSpace(el.AttrOr("value", ""))
		}
		return text
	}
	if el := byClass(doc, candidate); el.Length() > 0 {
		return htmlutil.Clean(htmlutil.SelectionText(el))
	}
	return ""
}

func lookupElements(ctx context.Context, doc *goquery.Document, rec *caserecord.Record, report Report) {
	_, span := tracer.Start(ctx, "extractor.element")
	defer span.End()

	for _, lookup := range elementLookups {
		if _, present := rec.Get(lookup.field); present {
			continue
		}
		for _, candidate := range lookup.candidates {
			value := candidateValue(doc, candidate)
			if value == "" {
				continue
			}
			if rec.Fill(lookup.field, value, caserecord.SourceElement) {
				report.record(StrategyElement, lookup.field)
			}
			break
		}
	}
}
