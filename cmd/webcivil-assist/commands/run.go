package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"webcivil-assist/internal/components/telemetry"
	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/journal"
	"webcivil-assist/lib/util/serviceutil"
	"webcivil-assist/lib/workbook"
	"webcivil-assist/services/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type action int

const (
	actionUnknown action = iota
	actionReady
	actionSkip
	actionStop
)

func parseAction(line string) action {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "r", "ready":
		return actionReady
	case "s", "skip":
		return actionSkip
	case "q", "quit", "stop":
		return actionStop
	default:
		return actionUnknown
	}
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	caseColor    = color.New(color.FgYellow, color.Bold)
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed, color.Bold)
)

const instructions = `Instructions:
  1. The index number of the current case is on your clipboard.
  2. Search for it in the browser window and open the case page.
  3. Enter "r" (ready) once the case details are showing.
  Enter "s" to skip a case, "q" to stop and save what was collected.
`

// readLines feeds the lines of r to the returned channel, which is closed
// at EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func promptCase(out io.Writer, s *session.Session) {
	id, _ := s.Current()
	caseColor.Fprintf(out, "\n[%d/%d] %s", s.Position(), s.Total(), id)
	fmt.Fprint(out, " > ")
}

func reportStep(out io.Writer, step session.Step) {
	filled := len(caserecord.Fields()) - len(step.Record.Absent())
	okColor.Fprintf(
		out, "closed %s (%d fields)\n",
		step.Record.Value(caserecord.IndexNumber), filled,
	)
	if step.Finished {
		okColor.Fprintf(out, "all cases done, saved %d records\n", step.Saved)
	}
}

func reportStop(out io.Writer, res session.StopResult, err error) error {
	if err != nil {
		errColor.Fprintf(out, "stopped, failed to save %d records: %v\n", res.Records, err)
		return err
	}
	if res.Flushed {
		okColor.Fprintf(out, "stopped, saved %d records\n", res.Saved)
	} else {
		okColor.Fprintf(out, "stopped, %d records collected\n", res.Records)
	}
	return nil
}

// operate runs the operator loop until the session ends, the input closes
// or ctx is cancelled. The last two stop the session.
func operate(ctx context.Context, ctrl *session.Controller, s *session.Session, lines <-chan string, out io.Writer) error {
	headingColor.Fprintf(out, "%d cases to go\n", s.Total())
	fmt.Fprint(out, instructions)

	for {
		promptCase(out, s)

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			res, err := ctrl.Stop(context.WithoutCancel(ctx), s)
			return reportStop(out, res, err)
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			res, err := ctrl.Stop(ctx, s)
			return reportStop(out, res, err)
		}

		var (
			step session.Step
			err  error
		)
		switch parseAction(line) {
		case actionReady:
			step, err = ctrl.MarkReady(ctx, s)
		case actionSkip:
			step, err = ctrl.Skip(ctx, s)
		case actionStop:
			res, err := ctrl.Stop(ctx, s)
			return reportStop(out, res, err)
		default:
			errColor.Fprintf(out, "unknown action %q, use r, s or q\n", strings.TrimSpace(line))
			continue
		}

		if errors.Is(err, context.Canceled) {
			continue
		}
		if step.Finished {
			if err != nil {
				errColor.Fprintf(out, "failed to save results: %v\n", err)
				return err
			}
			reportStep(out, step)
			return nil
		}
		if err != nil {
			errColor.Fprintf(out, "%v\n", err)
			continue
		}
		reportStep(out, step)
	}
}

func (a *app) run(ctx context.Context, in io.Reader, out io.Writer, install bool) error {
	cfg := a.config

	opts := session.Options{
		Source:      workbook.NewSource(cfg.Input, cfg.InputSheet),
		Browser:     browser.NewPlaywrightOpener(cfg.PlaywrightOptions(install)),
		Sink:        workbook.NewSink(cfg.Output, cfg.OutputSheet),
		Clipboard:   session.SystemClipboard{},
		Input:       cfg.Input,
		BaseURL:     cfg.BaseUrl,
		SettleDelay: cfg.SettleDelay(),
		FlushOnStop: cfg.ShouldFlushOnStop(),
	}
	if cfg.Journal != "" {
		j, err := journal.Open(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer serviceutil.Close("journal", j.Close)
		opts.Journal = j
	}

	ctrl := session.NewController(opts, telemetry.NewScopedAPI("session", a.tel))
	s, err := ctrl.Start(ctx)
	if err != nil {
		errColor.Fprintf(out, "could not start: %v\n", err)
		return err
	}
	return operate(ctx, ctrl, s, readLines(in), out)
}

func newRunCmd(a *app) *cobra.Command {
	var install bool
	cmd := &cobra.Command{
		Use:   "run [--install]",
		Short: "Starts an extraction session over the input workbook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), install)
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "Download the browser driver before starting.")
	return cmd
}
