package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/edutask/edutask-e2e-tests/framework"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

type chromedpLauncher struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        framework.Logger
}

func newChromedpLauncher(opts Options) *chromedpLauncher {
	l := &chromedpLauncher{logger: loggerOrNull(opts.Logger)}
	if opts.RemoteURL != "" {
		l.allocCtx, l.allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
		return l
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
	)
	l.allocCtx, l.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return l
}

// NewPage opens a new tab. The browser itself is started on the first call.
//
// The first Run on a chromedp context allocates its browser or tab, and cancelling the context
// of that Run closes it again, so those Runs are not bounded by ctx.
func (l *chromedpLauncher) NewPage(ctx context.Context, logger framework.Logger) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger = loggerOrNull(logger)
	if l.browserCtx == nil {
		browserCtx, browserCancel := chromedp.NewContext(l.allocCtx,
			chromedp.WithLogf(l.logger.Printf),
			chromedp.WithErrorf(l.logger.Printf),
		)
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			return nil, fmt.Errorf("could not start browser: %w", err)
		}
		l.browserCtx, l.browserCancel = browserCtx, browserCancel
	}

	tabCtx, cancel := chromedp.NewContext(l.browserCtx)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if ev.Type == runtime.APITypeError {
				args := make([]string, len(ev.Args))
				for i, arg := range ev.Args {
					args[i] = string(arg.Value)
				}
				logger.Printf("JS console error: %s", strings.Join(args, " "))
			}
		case *runtime.EventExceptionThrown:
			logger.Printf("JS exception: %s", ev.ExceptionDetails.Text)
		}
	})
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("could not open browser tab: %w", err)
	}
	return &chromedpPage{tabCtx: tabCtx, cancel: cancel}, nil
}

func (l *chromedpLauncher) Close() error {
	if l.browserCancel != nil {
		l.browserCancel()
	}
	l.allocCancel()
	return nil
}

type chromedpPage struct {
	tabCtx context.Context
	cancel context.CancelFunc
}

// run executes actions in the tab, bounded by the caller's ctx. Cancelling a child of the tab
// context only aborts the actions; the tab stays open until Close.
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func by(selector string) chromedp.QueryOption {
	if isXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func byAll(selector string) chromedp.QueryOption {
	if isXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQueryAll
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromedpPage) Click(ctx context.Context, selector string, index int) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(selector, &nodes, byAll(selector)).Do(ctx); err != nil {
			return err
		}
		if index < 0 || index >= len(nodes) {
			return fmt.Errorf("cannot click element %d of %q: only %d match", index, selector, len(nodes))
		}
		return chromedp.MouseClickNode(nodes[index]).Do(ctx)
	}))
}

func (p *chromedpPage) Type(ctx context.Context, selector, text string) error {
	return p.run(ctx, chromedp.SendKeys(selector, text, by(selector)))
}

func (p *chromedpPage) Clear(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Clear(selector, by(selector)))
}

func (p *chromedpPage) Submit(ctx context.Context, selector string) error {
	var ok bool
	return p.run(ctx, chromedp.Evaluate(submitScript(selector), &ok))
}

func (p *chromedpPage) Query(ctx context.Context, selector string) ([]Element, error) {
	var elements []Element
	if err := p.run(ctx, chromedp.Evaluate(queryScript(selector), &elements)); err != nil {
		return nil, err
	}
	return elements, nil
}

func (p *chromedpPage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}
