// Package browser owns the single browser session a run drives. It is a
// thin, side-effecting adapter over Rod: navigation, element
// interaction and DOM capture. It performs no retries and holds no
// business logic; failure policy lives with the callers.
package browser

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/finspider/config"
	"github.com/use-agent/finspider/models"
)

// Driver wraps one browser process and one page. It is NOT safe for
// concurrent use: the run model is strictly sequential and the driver
// is exclusively owned by the active orchestrator, walker or counter.
type Driver struct {
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig

	// cookieHandled marks that the consent banner sweep already ran for
	// this session.
	cookieHandled bool
}

// New launches the browser and prepares the single session page:
// stealth JS installed before any navigation, viewport applied,
// resource blocking mounted.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Driver, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.Bin != "" {
		l = l.Bin(browserCfg.Bin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.MustClose()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create session page",
			err,
		)
	}

	// Stealth must be installed before the first navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if browserCfg.ViewportWidth > 0 && browserCfg.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             browserCfg.ViewportWidth,
			Height:            browserCfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			slog.Warn("viewport override failed", "error", err)
		}
	}

	d := &Driver{
		browser:    b,
		page:       page,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}
	d.router = mountHijack(page, scraperCfg.BlockedResourceTypes)
	return d, nil
}

// Close releases the session page and kills the browser process. Call
// on shutdown (including interrupt) to prevent zombie Chrome processes.
func (d *Driver) Close() {
	if d.router != nil {
		_ = d.router.Stop()
	}
	if d.page != nil {
		_ = d.page.Close()
	}
	slog.Info("closing browser")
	d.browser.MustClose()
}
