package extractor

import (
	"context"

	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/htmlutil"
	"webcivil-assist/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// cellText is the visible text of a cell, replaced by the text of its first
// link when that link has text. Result lists are mostly links.
func cellText(ctx context.Context, cell *goquery.Selection) string {
	text := htmlutil.Clean(htmlutil.SelectionText(cell))
	if text == "" {
		return ""
	}
	if linkText := htmlutil.FirstAnchorText(ctx, cell); linkText != "" {
		return linkText
	}
	return text
}

func fillFromCell(text string, rec *caserecord.Record, report Report) {
	fill := func(f caserecord.Field) bool {
		if rec.Fill(f, text, caserecord.SourceTable) {
			report.record(StrategyTable, f)
			return true
		}
		return false
	}

	switch textutil.Classify(text) {
	case textutil.KindDate:
		if !fill(caserecord.AppearanceDate) {
			fill(caserecord.FilingDate)
		}
	case textutil.KindJudge:
		fill(caserecord.Judge)
	case textutil.KindFirm:
		fill(caserecord.FirstPlaintiffFirm)
	case textutil.KindTime:
		fill(caserecord.Time)
	}
}

func scanTables(ctx context.Context, doc *goquery.Document, rec *caserecord.Record, report Report) {
	ctx, span := tracer.Start(ctx, "extractor.table")
	defer span.End()

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			cells.Each(func(_ int, cell *goquery.Selection) {
				text := cellText(ctx, cell)
				if text == "" {
					return
				}
				fillFromCell(text, rec, report)
			})
		})
	})
}
