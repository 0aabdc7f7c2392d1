package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"webcivil-assist/internal/components/telemetry"
	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/extractor"
	"webcivil-assist/lib/restyutil"
	libtelemetry "webcivil-assist/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func isUrl(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func (a *app) fetch(ctx context.Context, url, dumpDir string) (browser.Snapshot, error) {
	client := resty.New().
		SetTimeout(time.Duration(a.config.Browser.TimeoutMs) * time.Millisecond)
	if a.config.Browser.UserAgent != "" {
		client.SetHeader("User-Agent", a.config.Browser.UserAgent)
	}
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("extract", a.tel))
	libtelemetry.TraceResty(client, "webcivil.cmd.extract")
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return browser.Snapshot{}, err
		}
		restyutil.Dump(client, output)
	}

	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return browser.Snapshot{}, err
	}
	if res.IsError() {
		return browser.Snapshot{}, fmt.Errorf("fetch %s: %s", url, res.Status())
	}
	return browser.Snapshot{URL: url, HTML: res.String()}, nil
}

func (a *app) snapshot(ctx context.Context, target, dumpDir string) (browser.Snapshot, error) {
	if isUrl(target) {
		return a.fetch(ctx, target, dumpDir)
	}
	page, err := browser.NewStaticFile(target)
	if err != nil {
		return browser.Snapshot{}, err
	}
	defer page.Close()
	return page.Snapshot(ctx)
}

func runExtract(ctx context.Context, out io.Writer, snap browser.Snapshot, index string) {
	rec, report := extractor.Extract(ctx, snap, index)
	if report.ParseError != nil {
		errColor.Fprintf(out, "failed to parse page: %v\n", report.ParseError)
	}
	writeRecord(out, rec)
	writeReport(out, report)
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		index   string
		dumpDir string
	)
	cmd := &cobra.Command{
		Use:   "extract <file|url> [--index <index number>]",
		Short: "Extracts the case fields of a saved page or url and prints them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context(), args[0], dumpDir)
			if err != nil {
				return err
			}
			runExtract(cmd.Context(), cmd.OutOrStdout(), snap, index)
			return nil
		},
	}
	cmd.Flags().StringVar(&index, "index", "", "The index number to stamp on the record.")
	cmd.Flags().StringVar(&dumpDir, "dump", "", "Write the raw http exchange to this directory.")
	return cmd
}
