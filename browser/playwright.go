package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edutask/edutask-e2e-tests/framework"

	"github.com/playwright-community/playwright-go"
)

type playwrightLauncher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func newPlaywrightLauncher(opts Options) (*playwrightLauncher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	loggerOrNull(opts.Logger).Printf("Launched Chromium %s through playwright", browser.Version())
	return &playwrightLauncher{pw: pw, browser: browser}, nil
}

// NewPage opens a page in a fresh browser context, so that pages do not share cookies or
// local storage.
func (l *playwrightLauncher) NewPage(ctx context.Context, logger framework.Logger) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger = loggerOrNull(logger)
	bctx, err := l.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not open page: %w", err)
	}
	page.On("console", func(msg playwright.ConsoleMessage) {
		if msg.Type() == "error" {
			logger.Printf("JS console error: %s", msg.Text())
		}
	})
	page.On("pageerror", func(err error) {
		logger.Printf("JS exception: %s", err)
	})
	return &playwrightPage{bctx: bctx, page: page}, nil
}

func (l *playwrightLauncher) Close() error {
	if err := l.browser.Close(); err != nil {
		_ = l.pw.Stop()
		return err
	}
	return l.pw.Stop()
}

type playwrightPage struct {
	bctx playwright.BrowserContext
	page playwright.Page
}

// timeoutFrom converts the time left before ctx's deadline into a Playwright timeout in
// milliseconds. Without a deadline Playwright's own default applies.
func timeoutFrom(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return nil, context.DeadlineExceeded
	}
	return playwright.Float(float64(left.Milliseconds())), nil
}

// asDeadline reports Playwright's own timeouts as context.DeadlineExceeded, which is what the
// chromedp driver returns when an action runs out of time.
func asDeadline(err error) error {
	if err != nil && errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s", context.DeadlineExceeded, err)
	}
	return err
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	timeout, err := timeoutFrom(ctx)
	if err != nil {
		return err
	}
	_, err = p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   timeout,
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return asDeadline(err)
}

func (p *playwrightPage) Click(ctx context.Context, selector string, index int) error {
	timeout, err := timeoutFrom(ctx)
	if err != nil {
		return err
	}
	return asDeadline(p.page.Locator(selector).Nth(index).Click(playwright.LocatorClickOptions{Timeout: timeout}))
}

func (p *playwrightPage) Type(ctx context.Context, selector, text string) error {
	timeout, err := timeoutFrom(ctx)
	if err != nil {
		return err
	}
	return asDeadline(p.page.Locator(selector).First().PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: timeout}))
}

func (p *playwrightPage) Clear(ctx context.Context, selector string) error {
	timeout, err := timeoutFrom(ctx)
	if err != nil {
		return err
	}
	return asDeadline(p.page.Locator(selector).First().Clear(playwright.LocatorClearOptions{Timeout: timeout}))
}

func (p *playwrightPage) Submit(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Evaluate(submitScript(selector))
	return err
}

func (p *playwrightPage) Query(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := p.page.Evaluate(queryScript(selector))
	if err != nil {
		return nil, err
	}
	// Evaluate returns generic maps and slices; a JSON round trip turns them into Elements.
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("unexpected query result %s: %w", string(data), err)
	}
	return elements, nil
}

func (p *playwrightPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *playwrightPage) Close() error {
	return p.bctx.Close()
}
