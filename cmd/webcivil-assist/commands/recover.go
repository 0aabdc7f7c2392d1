package commands

import (
	"context"
	"fmt"
	"io"

	"webcivil-assist/lib/journal"
	"webcivil-assist/lib/timezone"
	"webcivil-assist/lib/util/serviceutil"
	"webcivil-assist/lib/workbook"

	"github.com/spf13/cobra"
)

// recoverSession writes the journaled records of a session to sink, the
// latest session when id is empty.
func recoverSession(ctx context.Context, j journal.Journal, sink workbook.Sink, id string, out io.Writer) (int, error) {
	if id == "" {
		info, err := j.LatestSession(ctx)
		if err != nil {
			return 0, err
		}
		id = info.ID
		fmt.Fprintf(
			out, "recovering session %s (%s, started %s)\n",
			info.ID, info.Input, timezone.Format(info.StartedAt),
		)
	}

	records, err := j.Records(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("session %s has no records", id)
	}
	return sink.Flush(ctx, records)
}

func newRecoverCmd(a *app) *cobra.Command {
	var sessionId string
	cmd := &cobra.Command{
		Use:   "recover [--session <id>]",
		Short: "Writes the journaled records of an interrupted session to the output sheet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Journal == "" {
				return fmt.Errorf("no journal configured, set \"journal\" in %s", a.configPath)
			}
			j, err := journal.Open(cmd.Context(), a.config.Journal)
			if err != nil {
				return err
			}
			defer serviceutil.Close("journal", j.Close)

			sink := workbook.NewSink(a.config.Output, a.config.OutputSheet)
			n, err := recoverSession(cmd.Context(), j, sink, sessionId, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "saved %d records to %s\n", n, a.config.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionId, "session", "", "The session to recover, defaults to the latest one.")
	return cmd
}
