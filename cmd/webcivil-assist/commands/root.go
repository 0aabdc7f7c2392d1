package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"webcivil-assist/internal/components/telemetry"
	libtelemetry "webcivil-assist/lib/telemetry"
	"webcivil-assist/lib/util/serviceutil"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const serviceName = "webcivil-assist"

// app is what every subcommand shares once the root command has run its
// setup.
type app struct {
	configPath string
	verbose    bool

	config    Config
	tel       telemetry.API
	telemetry libtelemetry.Telemetry
	closeLog  func() error
}

// loadDotenv loads path into the environment, a missing file is fine.
func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (a *app) setup(ctx context.Context) error {
	if err := loadDotenv(".env"); err != nil {
		return err
	}

	config, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.config = config

	closeLog, err := libtelemetry.InitSlog(a.verbose, config.LogFile)
	if err != nil {
		serviceutil.Fatal("failed to open log file", err)
	}
	a.closeLog = closeLog

	a.telemetry, err = libtelemetry.SetupFromEnv(ctx, serviceName)
	if err != nil {
		slog.Warn("telemetry export disabled", "err", err)
	}
	if a.telemetry.MetricsEnabled() {
		libtelemetry.InstrumentPerfStats(ctx, time.Second*30)
	}
	a.tel = telemetry.NewSlogAPI(nil)
	return nil
}

func (a *app) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*5)
	defer cancel()
	serviceutil.Close("telemetry", func() error {
		return a.telemetry.Shutdown(ctx)
	})
	if a.closeLog != nil {
		serviceutil.Close("log file", a.closeLog)
	}
}

// NewRootCmd returns the cli and a func that flushes telemetry and closes
// the log file, to be called once the command returns.
func NewRootCmd() (*cobra.Command, func(context.Context)) {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "webcivil-assist",
		Short: "Operator-assisted case metadata extraction for NY Courts WebCivil.",
		Long: `webcivil-assist opens a browser on the WebCivil portal and walks through the
index numbers of an input workbook. For every case the operator brings up the
case page by hand (solving whatever CAPTCHA is in the way), then tells the tool
the page is ready. The visible fields are extracted and written to the output
sheet when the session ends.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.json5", "The configuration file.")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging.")

	cmd.AddCommand(
		newRunCmd(a),
		newIdsCmd(a),
		newExtractCmd(a),
		newRecoverCmd(a),
	)
	return cmd, a.shutdown
}
