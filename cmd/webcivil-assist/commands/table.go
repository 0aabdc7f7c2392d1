package commands

import (
	"io"

	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// writeRecord prints every field of rec, absent ones included.
func writeRecord(out io.Writer, rec caserecord.Record) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Field", "Value", "Source"})
	for _, f := range caserecord.Fields() {
		res := rec.Result(f)
		value := res.Value
		if !res.Present() {
			value = "-"
		}
		t.AppendRow(table.Row{f.String(), value, res.Source.String()})
	}
	t.Render()
}

func writeReport(out io.Writer, report extractor.Report) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Strategy", "Filled"})
	for _, s := range []extractor.Strategy{extractor.StrategyTable, extractor.StrategyText, extractor.StrategyElement} {
		t.AppendRow(table.Row{string(s), len(report.Filled[s])})
	}
	t.AppendFooter(table.Row{"Total", report.Count()})
	t.Render()
}
