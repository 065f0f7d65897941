package browser

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/use-agent/finspider/models"
)

// Open navigates the session page to rawURL and waits for the DOM to
// settle. Navigation failures and timeouts come back as typed errors;
// the caller decides whether they are fatal to the entity or the run.
func (d *Driver) Open(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, d.scraperCfg.NavigationTimeout)
	defer cancel()

	p := d.page.Context(ctx)

	// A plausible Referer helps with sites that gate direct hits.
	if u, err := url.Parse(rawURL); err == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
			},
		}.Call(p)
	}

	if err := p.Navigate(rawURL); err != nil {
		return navError(err, "navigation to "+rawURL+" failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", rawURL, "error", err,
		)
	}
	if d.scraperCfg.SettleDelay > 0 {
		select {
		case <-time.After(d.scraperCfg.SettleDelay):
		case <-ctx.Done():
			return navError(ctx.Err(), "settle wait canceled")
		}
	}
	return nil
}

// Capture returns the current rendered DOM as a snapshot.
func (d *Driver) Capture(ctx context.Context) (models.Snapshot, error) {
	p := d.page.Context(ctx)
	html, err := p.HTML()
	if err != nil {
		return models.Snapshot{}, navError(err, "failed to capture page HTML")
	}
	finalURL := ""
	if res, evalErr := p.Eval(`() => window.location.href`); evalErr == nil {
		finalURL = res.Value.Str()
	}
	return models.Snapshot{
		URL:        finalURL,
		HTML:       html,
		CapturedAt: time.Now(),
	}, nil
}

// DismissCookieBanner clicks through common consent buttons, best
// effort, bounded to ten seconds. The banner only appears on the
// session's first page; later calls return immediately so a multi
// ticker run does not stall ten seconds per entity.
func (d *Driver) DismissCookieBanner(ctx context.Context) {
	if d.cookieHandled {
		return
	}
	d.cookieHandled = true

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		p := d.page.Context(ctx)
		el, err := p.Timeout(800 * time.Millisecond).ElementR("button", "/^(AGREE|ACCEPT|OK)$/i")
		if err == nil {
			if visible, _ := el.Visible(); visible {
				if clickErr := el.Click(proto.InputMouseButtonLeft, 1); clickErr == nil {
					return
				}
			}
		}
		select {
		case <-time.After(400 * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}
}

// navError wraps raw navigation errors into typed ScrapeErrors.
func navError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "navigation canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
