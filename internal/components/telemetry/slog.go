package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SlogAPI implements API using the log/slog package, counts are also
// recorded on an otel gauge.
type SlogAPI struct {
	logger *slog.Logger
	gauge  metric.Int64Gauge
}

// NewSlogAPI creates a SlogAPI writing to logger, nil means slog.Default().
func NewSlogAPI(logger *slog.Logger) SlogAPI {
	gauge, err := otel.Meter("webcivil.telemetry").Int64Gauge("report_count")
	if err != nil {
		slog.Warn("failed to create count gauge", "err", err)
	}
	return SlogAPI{logger: logger, gauge: gauge}
}

func (s SlogAPI) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log().Error("broken component", remainingPairs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log().Warn("warning", remainingPairs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.log().Debug(message, remainingPairs...)
}

func (s SlogAPI) ReportInfo(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.log().Info(message, remainingPairs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.log().Info("count", "id", id, "n", count)
	if s.gauge != nil {
		s.gauge.Record(context.Background(), count, metric.WithAttributes(attribute.String("id", id)))
	}
}
