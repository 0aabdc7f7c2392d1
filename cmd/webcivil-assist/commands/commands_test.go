package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"webcivil-assist/internal/components/telemetry"
	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/journal"
	"webcivil-assist/lib/testutil"
	"webcivil-assist/lib/workbook"
	"webcivil-assist/services/session"

	"github.com/stretchr/testify/require"
)

const casePage = `<html><body>
<table>
	<tr><td>01/15/2024</td><td>Hon. Jane Smith</td></tr>
</table>
</body></html>`

func TestParseAction(t *testing.T) {
	cases := map[string]action{
		"r":       actionReady,
		" Ready ": actionReady,
		"s":       actionSkip,
		"SKIP":    actionSkip,
		"q":       actionStop,
		"stop":    actionStop,
		"quit":    actionStop,
		"":        actionUnknown,
		"next":    actionUnknown,
	}
	for line, expected := range cases {
		require.Equal(t, expected, parseAction(line), line)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "webcivil_mockup.xlsx", config.Input)
	require.Equal(t, config.Input, config.Output)
	require.Equal(t, "I. Input Sheet", config.InputSheet)
	require.Equal(t, "II. Output Sheet", config.OutputSheet)
	require.Equal(t, "scraper.log", config.LogFile)
	require.True(t, config.ShouldFlushOnStop())
	require.Equal(t, int64(1000), config.SettleDelay().Milliseconds())

	require.NoError(t, os.WriteFile(path, []byte(`{
		input: "cases.xlsx",
		output: "results.xlsx",
		flush_on_stop: false,
		settle_delay_ms: 0,
		browser: {headless: true},
	}`), 0600))
	config, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "cases.xlsx", config.Input)
	require.Equal(t, "results.xlsx", config.Output)
	require.False(t, config.ShouldFlushOnStop())
	require.Zero(t, config.SettleDelay())
	require.Equal(t, "I. Input Sheet", config.InputSheet)
	require.True(t, config.Browser.Headless)
	require.Equal(t, 30_000, config.Browser.TimeoutMs)

	t.Setenv("WEBCIVIL_INPUT", "from-env.xlsx")
	config, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-env.xlsx", config.Input)
	require.Equal(t, "results.xlsx", config.Output)
	require.False(t, config.ShouldFlushOnStop())
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadDotenv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEBCIVIL_TEST_DOTENV=cases.xlsx\n"), 0600))
	t.Setenv("WEBCIVIL_TEST_DOTENV", "")
	os.Unsetenv("WEBCIVIL_TEST_DOTENV")
	require.NoError(t, loadDotenv(path))
	require.Equal(t, "cases.xlsx", os.Getenv("WEBCIVIL_TEST_DOTENV"))

	require.NoError(t, os.WriteFile(path, []byte("WEBCIVIL!INPUT=cases.xlsx\n"), 0600))
	require.Error(t, loadDotenv(path))
}

func feed(lines ...string) <-chan string {
	out := make(chan string, len(lines))
	for _, l := range lines {
		out <- l
	}
	close(out)
	return out
}

func newTestController(path string, page *browser.Static, j session.Journal) *session.Controller {
	opts := session.Options{
		Source: workbook.NewSource(path, "I. Input Sheet"),
		Browser: browser.OpenerFunc(func(ctx context.Context) (browser.NavigableSession, error) {
			return page, nil
		}),
		Sink:        workbook.NewSink(path, "II. Output Sheet"),
		Input:       path,
		BaseURL:     "https://iapps.courts.state.ny.us/webcivilLocal/LCMain",
		FlushOnStop: true,
	}
	if j != nil {
		opts.Journal = j
	}
	return session.NewController(opts, &telemetry.Recorder{})
}

func outputRows(t testing.TB, path string) [][]string {
	return testutil.ReadSheet(t, path, "II. Output Sheet", len(caserecord.Columns()))
}

func TestOperate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	testutil.WriteIdentifiers(t, path, "I. Input Sheet", "12345/2020", "67890/2021")

	ctrl := newTestController(path, browser.NewStatic("about:blank", casePage), nil)
	s, err := ctrl.Start(ctx)
	require.NoError(t, err)

	var out bytes.Buffer
	err = operate(ctx, ctrl, s, feed("what", "r", "s"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), `unknown action "what"`)
	require.Contains(t, out.String(), "[1/2] 12345/2020")
	require.Contains(t, out.String(), "[2/2] 67890/2021")
	require.Contains(t, out.String(), "saved 2 records")

	rows := outputRows(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, caserecord.Columns(), rows[0])
	require.Equal(t, "12345/2020", rows[1][caserecord.IndexNumber])
	require.Equal(t, "01/15/2024", rows[1][caserecord.AppearanceDate])
	require.Equal(t, "Hon. Jane Smith", rows[1][caserecord.Judge])
	require.Equal(t, "67890/2021", rows[2][caserecord.IndexNumber])
	for _, cell := range rows[2][1:] {
		require.Empty(t, cell)
	}
}

func TestOperateStopsOnEOF(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	testutil.WriteIdentifiers(t, path, "I. Input Sheet", "12345/2020", "67890/2021", "11111/2022")

	page := browser.NewStatic("about:blank", casePage)
	ctrl := newTestController(path, page, nil)
	s, err := ctrl.Start(ctx)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, operate(ctx, ctrl, s, feed("r"), &out))
	require.Contains(t, out.String(), "stopped, saved 1 records")
	require.True(t, page.Closed())
	require.Equal(t, session.StateStopped, s.State())
	require.Len(t, outputRows(t, path), 2)
}

func TestOperateCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	testutil.WriteIdentifiers(t, path, "I. Input Sheet", "12345/2020", "67890/2021")

	ctrl := newTestController(path, browser.NewStatic("about:blank", casePage), nil)
	s, err := ctrl.Start(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	// nothing is ever typed, only the cancellation can end the loop
	require.NoError(t, operate(ctx, ctrl, s, make(chan string), &out))
	require.Equal(t, session.StateStopped, s.State())
	require.Contains(t, out.String(), "stopped, 0 records collected")
}

func TestRecoverSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.xlsx")
	testutil.WriteIdentifiers(t, path, "I. Input Sheet", "12345/2020", "67890/2021", "11111/2022")

	j, err := journal.Open(ctx, filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	// the operator closes two cases and the process dies before saving
	ctrl := newTestController(path, browser.NewStatic("about:blank", casePage), j)
	s, err := ctrl.Start(ctx)
	require.NoError(t, err)
	_, err = ctrl.MarkReady(ctx, s)
	require.NoError(t, err)
	_, err = ctrl.Skip(ctx, s)
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := recoverSession(ctx, j, workbook.NewSink(path, "II. Output Sheet"), "", &out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Contains(t, out.String(), s.ID)

	rows := outputRows(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, "Hon. Jane Smith", rows[1][caserecord.Judge])
	require.Equal(t, "67890/2021", rows[2][caserecord.IndexNumber])

	_, err = recoverSession(ctx, j, workbook.NewSink(path, "II. Output Sheet"), "unknown", &out)
	require.Error(t, err)
}

func TestExtractFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "case.html")
	require.NoError(t, os.WriteFile(path, []byte(casePage), 0600))

	a := &app{config: defaultConfig(), tel: &telemetry.Recorder{}}
	snap, err := a.snapshot(ctx, path, "")
	require.NoError(t, err)

	var out bytes.Buffer
	runExtract(ctx, &out, snap, "12345/2020")
	require.Contains(t, out.String(), "12345/2020")
	require.Contains(t, out.String(), "Hon. Jane Smith")
	require.Contains(t, out.String(), "AppearanceDate")
}

func TestExtractUrl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(casePage))
	}))
	defer srv.Close()

	ctx := context.Background()
	dump := filepath.Join(t.TempDir(), "dump")
	rec := &telemetry.Recorder{}
	a := &app{config: defaultConfig(), tel: rec}

	snap, err := a.snapshot(ctx, srv.URL+"/case", dump)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/case", snap.URL)
	require.Contains(t, snap.HTML, "Hon. Jane Smith")
	require.Len(t, rec.Find(telemetry.LevelDebug, "resty.request"), 1)

	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = a.snapshot(ctx, srv.URL+"/missing", "")
	require.ErrorContains(t, err, "404")
}
