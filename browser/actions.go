package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/finspider/models"
)

// Interactions run against the session page with a per-action deadline.
// Element-not-found and timeout come back as InteractionError: fatal to
// the current section only, never to the run.

func (d *Driver) actionPage(ctx context.Context) (*rod.Page, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, d.scraperCfg.ActionTimeout)
	return d.page.Context(ctx), cancel
}

// Center scrolls the first element matching selector into the middle of
// the viewport. Lazily rendered widgets only populate once visible.
func (d *Driver) Center(ctx context.Context, selector string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return interactionError(selector, "element not found", err)
	}
	if _, err := el.Eval(`() => this.scrollIntoView({block: "center"})`); err != nil {
		return interactionError(selector, "scroll into view failed", err)
	}
	time.Sleep(250 * time.Millisecond)
	return nil
}

// Click clicks the first element matching selector.
func (d *Driver) Click(ctx context.Context, selector string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return interactionError(selector, "element not found", err)
	}
	return d.clickElement(el, selector)
}

// ClickText clicks the first element matching selector whose visible
// text matches the given literal text.
func (d *Driver) ClickText(ctx context.Context, selector, text string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.ElementR(selector, regexLiteral(text))
	if err != nil {
		return interactionError(selector, fmt.Sprintf("element with text %q not found", text), err)
	}
	return d.clickElement(el, selector)
}

// EnsureToggled clicks the control with the given text unless its class
// list already contains activeClass. Returns whether a click happened.
func (d *Driver) EnsureToggled(ctx context.Context, selector, text, activeClass string) (clicked bool, err error) {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.ElementR(selector, regexLiteral(text))
	if err != nil {
		return false, interactionError(selector, fmt.Sprintf("toggle %q not found", text), err)
	}
	class, err := el.Attribute("class")
	if err != nil {
		return false, interactionError(selector, "toggle class read failed", err)
	}
	if class != nil && strings.Contains(*class, activeClass) {
		return false, nil
	}
	if err := d.clickElement(el, selector); err != nil {
		return false, err
	}
	time.Sleep(200 * time.Millisecond)
	return true, nil
}

// WaitActive blocks until the control with the given text carries
// activeClass in its class list, or the action deadline fires. Clicking
// a tab swaps the panel asynchronously while the old panel still
// matches the panel selector, so waiting on the clicked control's
// active state is the only reliable post-click guard.
func (d *Driver) WaitActive(ctx context.Context, selector, text, activeClass string) error {
	ctx, cancel := context.WithTimeout(ctx, d.scraperCfg.ActionTimeout)
	defer cancel()
	p := d.page.Context(ctx)

	for {
		el, err := p.ElementR(selector, regexLiteral(text))
		if err != nil {
			return interactionError(selector, fmt.Sprintf("control %q not found", text), err)
		}
		class, err := el.Attribute("class")
		if err != nil {
			return interactionError(selector, "control class read failed", err)
		}
		if class != nil && strings.Contains(*class, activeClass) {
			return nil
		}
		select {
		case <-ctx.Done():
			return interactionError(selector,
				fmt.Sprintf("control %q never became active", text), ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// WaitVisible blocks until the selector is present and visible, or the
// action deadline fires.
func (d *Driver) WaitVisible(ctx context.Context, selector string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return interactionError(selector, "element not found", err)
	}
	if err := el.WaitVisible(); err != nil {
		return interactionError(selector, "element never became visible", err)
	}
	return nil
}

// Fill replaces the content of an input element with text.
func (d *Driver) Fill(ctx context.Context, selector, text string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return interactionError(selector, "input not found", err)
	}
	if err := el.SelectAllText(); err != nil {
		return interactionError(selector, "select text failed", err)
	}
	if err := el.Input(text); err != nil {
		return interactionError(selector, "input failed", err)
	}
	return nil
}

// PressEnter sends Enter to the element matching selector.
func (d *Driver) PressEnter(ctx context.Context, selector string) error {
	p, cancel := d.actionPage(ctx)
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return interactionError(selector, "input not found", err)
	}
	if err := el.Type(input.Enter); err != nil {
		return interactionError(selector, "key press failed", err)
	}
	return nil
}

// clickElement scrolls the element into view first; off-screen controls
// swallow synthetic clicks on this site.
func (d *Driver) clickElement(el *rod.Element, selector string) error {
	_, _ = el.Eval(`() => this.scrollIntoView({block: "center"})`)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		// Fall back to a JS click; some controls sit under invisible
		// overlay layers that defeat the emulated mouse.
		if _, evalErr := el.Eval(`() => this.click()`); evalErr != nil {
			return interactionError(selector, "click failed", err)
		}
	}
	return nil
}

// regexLiteral builds a case-sensitive literal-match pattern for
// Page.ElementR, escaping regex metacharacters in text.
func regexLiteral(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`, `/`, `\/`,
	)
	return "/" + replacer.Replace(text) + "/"
}

func interactionError(selector, msg string, err error) *models.ScrapeError {
	return models.NewScrapeError(
		models.ErrCodeInteraction,
		fmt.Sprintf("%s: %s", selector, msg),
		err,
	)
}
