package extractor

import (
	"context"
	"regexp"
	"strings"

	"webcivil-assist/lib/caserecord"
)

type textPattern struct {
	field    caserecord.Field
	patterns []*regexp.Regexp
}

// label-anchored patterns, the value runs to the end of the line
var textPatterns = []textPattern{
	{
		field: caserecord.Classification,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Classification[:\s]+([^\n]+)`),
			regexp.MustCompile(`(?i)Case Type[:\s]+([^\n]+)`),
		},
	},
	{
		field: caserecord.FilingDate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Filing Date[:\s]+([^\n]+)`),
			regexp.MustCompile(`(?i)Filed[:\s]+([^\n]+)`),
		},
	},
	{
		field: caserecord.DispositionDate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Disposition[:\s]+([^\n]+)`),
			regexp.MustCompile(`(?i)Disposed[:\s]+([^\n]+)`),
		},
	},
	{
		field: caserecord.CaseName,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Case Name[:\s]+([^\n]+)`),
			regexp.MustCompile(`(?i)Caption[:\s]+([^\n]+)`),
		},
	},
}

func searchText(ctx context.Context, text string, rec *caserecord.Record, report Report) {
	_, span := tracer.Start(ctx, "extractor.text")
	defer span.End()

	if text == "" {
		return
	}
	for _, tp := range textPatterns {
		if _, present := rec.Get(tp.field); present {
			continue
		}
		for _, re := range tp.patterns {
			match := re.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			if rec.Fill(tp.field, strings.TrimSpace(match[1]), caserecord.SourceText) {
				report.record(StrategyText, tp.field)
			}
			break
		}
	}
}
