package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// hides navigator.webdriver so the portal does not flag the window as automated
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// copies live form state into attributes so it survives page.Content()
const syncFormValuesScript = `() => {
	document.querySelectorAll('input, textarea').forEach((el) => {
		if (el.value !== undefined && el.value !== null) {
			el.setAttribute('value', el.value);
		}
	});
}`

type PlaywrightOptions struct {
	Headless bool
	// Channel selects a branded browser ("chrome", "msedge"), empty means
	// the bundled chromium.
	Channel   string
	UserAgent string
	// TimeoutMs is the navigation timeout, 0 means 30 seconds.
	TimeoutMs float64
	// Install downloads the browser driver when it is missing.
	Install bool
}

// PlaywrightOpener launches a visible Chromium window through playwright.
type PlaywrightOpener struct {
	Options PlaywrightOptions
}

func NewPlaywrightOpener(opts PlaywrightOptions) PlaywrightOpener {
	return PlaywrightOpener{Options: opts}
}

func (o PlaywrightOpener) Open(ctx context.Context) (NavigableSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := o.Options
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.TimeoutMs <= 0 {
		opts.TimeoutMs = 30_000
	}

	if opts.Install {
		err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		})
		if err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
		IgnoreDefaultArgs: []string{"--enable-automation"},
	}
	if opts.Channel != "" {
		launch.Channel = playwright.String(opts.Channel)
	}
	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("launch browser: %w", err), pw.Stop())
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("new browser context: %w", err), browser.Close(), pw.Stop())
	}
	err = bctx.AddInitScript(playwright.Script{
		Content: playwright.String(hideWebdriverScript),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to install init script", "err", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("new page: %w", err), browser.Close(), pw.Stop())
	}
	page.SetDefaultNavigationTimeout(opts.TimeoutMs)

	return &playwrightSession{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		timeout: opts.TimeoutMs,
	}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	timeout float64
}

// activePage is the most recently opened page that is still open, the
// operator may have followed a link into a new tab.
func (s *playwrightSession) activePage() playwright.Page {
	pages := s.context.Pages()
	for i := len(pages) - 1; i >= 0; i-- {
		if !pages[i].IsClosed() {
			return pages[i]
		}
	}
	return s.page
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(s.timeout),
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *playwrightSession) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	page := s.activePage()

	err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
	if err != nil {
		slog.DebugContext(ctx, "page did not settle", "err", err)
	}
	if _, err := page.Evaluate(syncFormValuesScript); err != nil {
		slog.DebugContext(ctx, "failed to sync form values", "err", err)
	}

	html, err := page.Content()
	if err != nil {
		return Snapshot{}, fmt.Errorf("page content: %w", err)
	}
	text, err := page.Locator("body").InnerText()
	if err != nil {
		// the extractor falls back to rendering the html
		slog.DebugContext(ctx, "failed to read body text", "err", err)
		text = ""
	}

	return Snapshot{
		URL:  page.URL(),
		HTML: html,
		Text: text,
	}, nil
}

func (s *playwrightSession) Close() error {
	var errs []error
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}
