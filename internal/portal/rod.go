package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dtefiler/internal/config"
	"dtefiler/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodDriver is a Driver backed by a Chrome instance through go-rod. It either
// attaches to a running Chrome (DebuggerURL) or launches its own.
type RodDriver struct {
	browserCfg     config.BrowserConfig
	userAgent      string
	elementTimeout time.Duration
	navTimeout     time.Duration

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	attached bool
}

// NewRodDriver creates an unopened driver.
func NewRodDriver(bc config.BrowserConfig, pc config.PortalConfig) *RodDriver {
	return &RodDriver{
		browserCfg:     bc,
		userAgent:      pc.UserAgent,
		elementTimeout: pc.GetElementTimeout(),
		navTimeout:     pc.GetNavigationTimeout(),
	}
}

// Open connects to Chrome and creates the working page.
func (d *RodDriver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.page != nil {
		return nil
	}

	controlURL := d.browserCfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(d.browserCfg.Headless)
		if d.browserCfg.Bin != "" {
			l = l.Bin(d.browserCfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return opError("open", "chrome", fmt.Errorf("launch chrome: %w", err))
		}
		d.launch = l
		controlURL = u
	} else {
		d.attached = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		d.cleanupLocked()
		return opError("open", "chrome", fmt.Errorf("connect to chrome: %w", err))
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		d.cleanupLocked()
		return opError("open", "page", fmt.Errorf("create page: %w", err))
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             d.browserCfg.GetViewportWidth(),
		Height:            d.browserCfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		logging.Get(logging.CategoryPortal).Warn("failed to set viewport: %v", err)
	}

	if d.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: d.userAgent}); err != nil {
			d.cleanupLocked()
			return opError("open", "user-agent", err)
		}
	}

	d.page = page
	logging.PortalDebug("browser ready (attached=%v)", d.attached)
	return nil
}

func (d *RodDriver) current() (*rod.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page == nil {
		return nil, errors.New("driver not open")
	}
	return d.page, nil
}

// Goto navigates and waits for the load event.
func (d *RodDriver) Goto(ctx context.Context, url string) error {
	page, err := d.current()
	if err != nil {
		return opError("goto", url, err)
	}
	nctx, cancel := context.WithTimeout(ctx, d.navTimeout)
	defer cancel()

	p := page.Context(nctx)
	if err := p.Navigate(url); err != nil {
		return opError("goto", url, err)
	}
	return opError("goto", url, p.WaitLoad())
}

// WaitForElement blocks until selector is present in the DOM.
func (d *RodDriver) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	page, err := d.current()
	if err != nil {
		return opError("wait", selector, err)
	}
	return awaitOrTimeout(ctx, "wait", selector, timeout, func(sctx context.Context) error {
		_, err := page.Context(sctx).Element(selector)
		return err
	})
}

func (d *RodDriver) withElement(ctx context.Context, op, selector string, fn func(*rod.Element) error) error {
	page, err := d.current()
	if err != nil {
		return opError(op, selector, err)
	}
	ectx, cancel := context.WithTimeout(ctx, d.elementTimeout)
	defer cancel()

	el, err := page.Context(ectx).Element(selector)
	if err != nil {
		return opError(op, selector, err)
	}
	return opError(op, selector, fn(el))
}

// Focus gives keyboard focus to selector.
func (d *RodDriver) Focus(ctx context.Context, selector string) error {
	return d.withElement(ctx, "focus", selector, func(el *rod.Element) error {
		return el.Focus()
	})
}

// TypeText inserts text at the focused element.
func (d *RodDriver) TypeText(ctx context.Context, text string) error {
	page, err := d.current()
	if err != nil {
		return opError("type", "", err)
	}
	return opError("type", "", page.Context(ctx).InsertText(text))
}

// PressKey presses one non-text key.
func (d *RodDriver) PressKey(ctx context.Context, key Key) error {
	page, err := d.current()
	if err != nil {
		return opError("press", string(key), err)
	}
	var k input.Key
	switch key {
	case KeyTab:
		k = input.Tab
	case KeyEnter:
		k = input.Enter
	case KeySpace:
		k = input.Space
	default:
		return opError("press", string(key), fmt.Errorf("unsupported key %q", key))
	}
	return opError("press", string(key), page.Context(ctx).Keyboard.Press(k))
}

// Click left-clicks selector.
func (d *RodDriver) Click(ctx context.Context, selector string) error {
	return d.withElement(ctx, "click", selector, func(el *rod.Element) error {
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}

const selectByValueJS = `function (value) {
	this.value = value;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return this.value === value;
}`

// Select picks the option with the given value on a select element.
func (d *RodDriver) Select(ctx context.Context, selector, value string) error {
	return d.withElement(ctx, "select", selector, func(el *rod.Element) error {
		res, err := el.Eval(selectByValueJS, value)
		if err != nil {
			return err
		}
		if !res.Value.Bool() {
			return fmt.Errorf("no option with value %q", value)
		}
		return nil
	})
}

// Evaluate runs script in the page, awaiting it if it returns a promise.
func (d *RodDriver) Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	page, err := d.current()
	if err != nil {
		return nil, opError("evaluate", "", err)
	}
	res, err := page.Context(ctx).Evaluate(rod.Eval(script, args...).ByPromise())
	if err != nil {
		return nil, opError("evaluate", "", err)
	}
	return res.Value.Val(), nil
}

// WaitNavigation arms a wait for the next page load to go network-idle.
func (d *RodDriver) WaitNavigation(ctx context.Context, timeout time.Duration) func() error {
	page, err := d.current()
	if err != nil {
		return func() error { return opError("navigation", "", err) }
	}
	nctx, cancel := context.WithTimeout(ctx, timeout)
	wait := page.Context(nctx).WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	return func() error {
		defer cancel()
		wait()
		if err := ctx.Err(); err != nil {
			return opError("navigation", "", err)
		}
		if nctx.Err() != nil {
			return &DriverError{Op: "navigation", Err: ErrTimeout}
		}
		return nil
	}
}

const onceEventJS = `(selector, event) => new Promise((resolve) => {
	const el = document.querySelector(selector);
	if (!el) { resolve(false); return; }
	el.addEventListener(event, () => resolve(true), { once: true });
})`

// WaitForSignal waits for one DOM event on selector.
func (d *RodDriver) WaitForSignal(ctx context.Context, selector, event string, timeout time.Duration) (WaitOutcome, error) {
	page, err := d.current()
	if err != nil {
		return 0, opError("signal", selector, err)
	}
	outcome, err := AwaitSignalOrDeadline(ctx, timeout, func(sctx context.Context) error {
		res, err := page.Context(sctx).Evaluate(rod.Eval(onceEventJS, selector, event).ByPromise())
		if err != nil {
			return err
		}
		if !res.Value.Bool() {
			return fmt.Errorf("element not found")
		}
		return nil
	})
	if err != nil {
		return 0, opError("signal", selector, err)
	}
	return outcome, nil
}

// Close releases the page, and the browser unless it was attached.
func (d *RodDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cleanupLocked()
}

func (d *RodDriver) cleanupLocked() error {
	var err error
	if d.page != nil {
		if d.attached {
			err = d.page.Close()
		}
		d.page = nil
	}
	if d.browser != nil {
		if !d.attached {
			err = d.browser.Close()
		}
		d.browser = nil
	}
	if d.launch != nil {
		d.launch.Kill()
		d.launch.Cleanup()
		d.launch = nil
	}
	return err
}

var _ Driver = (*RodDriver)(nil)
