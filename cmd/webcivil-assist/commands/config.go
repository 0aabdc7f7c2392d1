package commands

import (
	"os"
	"time"

	"webcivil-assist/lib/browser"
	"webcivil-assist/lib/configutil"

	"dario.cat/mergo"
)

type BrowserConfig struct {
	Headless  bool   `json:"headless"`
	UserAgent string `json:"user_agent"`
	TimeoutMs int    `json:"timeout_ms"`
	Channel   string `json:"channel"`
}

type Config struct {
	Input       string `json:"input"`
	InputSheet  string `json:"input_sheet"`
	Output      string `json:"output"`
	OutputSheet string `json:"output_sheet"`
	BaseUrl     string `json:"base_url"`
	LogFile     string `json:"log_file"`
	// Journal is a sqlite path or libsql url, empty disables the journal.
	Journal       string        `json:"journal"`
	SettleDelayMs int           `json:"settle_delay_ms"`
	FlushOnStop   *bool         `json:"flush_on_stop"`
	Browser       BrowserConfig `json:"browser"`
}

func defaultConfig() Config {
	flush := true
	return Config{
		Input:         "webcivil_mockup.xlsx",
		InputSheet:    "I. Input Sheet",
		OutputSheet:   "II. Output Sheet",
		BaseUrl:       "https://iapps.courts.state.ny.us/webcivilLocal/LCMain",
		LogFile:       "scraper.log",
		SettleDelayMs: 1000,
		FlushOnStop:   &flush,
		Browser: BrowserConfig{
			TimeoutMs: 30_000,
		},
	}
}

// envConfig holds the values set through the environment (usually from
// .env), unset variables leave their field empty.
func envConfig() Config {
	return Config{
		Input:   os.Getenv("WEBCIVIL_INPUT"),
		Output:  os.Getenv("WEBCIVIL_OUTPUT"),
		Journal: os.Getenv("WEBCIVIL_JOURNAL"),
		BaseUrl: os.Getenv("WEBCIVIL_BASE_URL"),
	}
}

// LoadConfig reads path (and its .local override) on top of the defaults,
// then applies the environment. A missing file is fine.
func LoadConfig(path string) (Config, error) {
	config, err := configutil.ReadWithDefaults(path, defaultConfig())
	if err != nil {
		return Config{}, err
	}
	// only non-empty env values replace the file's
	if err := mergo.Merge(&config, envConfig(), mergo.WithOverride); err != nil {
		return Config{}, err
	}
	if config.Output == "" {
		config.Output = config.Input
	}
	return config, nil
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c Config) ShouldFlushOnStop() bool {
	return c.FlushOnStop == nil || *c.FlushOnStop
}

func (c Config) PlaywrightOptions(install bool) browser.PlaywrightOptions {
	return browser.PlaywrightOptions{
		Headless:  c.Browser.Headless,
		Channel:   c.Browser.Channel,
		UserAgent: c.Browser.UserAgent,
		TimeoutMs: float64(c.Browser.TimeoutMs),
		Install:   install,
	}
}
