package session

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const library_name = "webcivil.services.session"

var tracer = otel.Tracer(library_name)

func SetTracerProvider(provider trace.TracerProvider) {
	tracer = provider.Tracer(library_name)
}

const (
	report_session_start     = "session.start"
	report_browser_open      = "browser.open"
	report_browser_navigate  = "browser.navigate"
	report_browser_snapshot  = "browser.snapshot"
	report_browser_close     = "browser.close"
	report_clipboard_write   = "clipboard.write"
	report_journal_begin     = "journal.begin"
	report_journal_append    = "journal.append"
	report_sink_flush        = "sink.flush"
	report_extract_parse     = "extractor.parse"
	report_records_collected = "records_collected"
	report_case_extracted    = "case.extracted"
	report_case_skipped      = "case.skipped"
	report_case_closed       = "case.closed"
)
