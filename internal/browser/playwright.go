package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightManager owns the playwright driver for the whole process and
// opens one fresh browser, context and page per Open call.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	cfg     SessionConfig
	cookies []playwright.OptionalCookie
}

// NewPlaywright starts the playwright driver. Cookies are read once here;
// a missing or invalid cookie file only produces a warning.
func NewPlaywright(cfg SessionConfig) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	pm := &PlaywrightManager{pw: pw, cfg: cfg}
	if cfg.CookiesPath != "" {
		cookies, err := LoadCookies(cfg.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing.", cfg.CookiesPath, err)
		} else {
			log.Printf("🍪 Loaded %d cookies", len(cookies))
			pm.cookies = cookies
		}
	}
	return pm, nil
}

func (pm *PlaywrightManager) launchArgs() []string {
	args := []string{"--no-sandbox", "--disable-dev-shm-usage"}
	if pm.cfg.Stealth {
		args = append(args, "--disable-blink-features=AutomationControlled")
	}
	if pm.cfg.UserDataDir != "" && pm.cfg.ProfileDirectory != "" {
		args = append(args, "--profile-directory="+pm.cfg.ProfileDirectory)
	}
	return args
}

func (pm *PlaywrightManager) ignoredDefaultArgs() []string {
	if pm.cfg.Stealth {
		return []string{"--enable-automation"}
	}
	return nil
}

// headless windows get a desktop-sized viewport so the full layout renders
func (pm *PlaywrightManager) viewport() *playwright.Size {
	if !pm.cfg.Headless {
		return nil
	}
	return &playwright.Size{Width: 1920, Height: 1080}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return playwright.String(s)
}

// Open launches a browser and returns its single page as a Session.
func (pm *PlaywrightManager) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &playwrightSession{}
	if pm.cfg.UserDataDir != "" {
		bctx, err := pm.pw.Chromium.LaunchPersistentContext(pm.cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:          playwright.Bool(pm.cfg.Headless),
			Args:              pm.launchArgs(),
			IgnoreDefaultArgs: pm.ignoredDefaultArgs(),
			UserAgent:         optionalString(pm.cfg.UserAgent),
			Viewport:          pm.viewport(),
		})
		if err != nil {
			return nil, fmt.Errorf("could not launch persistent context: %w", err)
		}
		s.context = bctx
	} else {
		b, err := pm.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless:          playwright.Bool(pm.cfg.Headless),
			Args:              pm.launchArgs(),
			IgnoreDefaultArgs: pm.ignoredDefaultArgs(),
		})
		if err != nil {
			return nil, fmt.Errorf("could not launch browser: %w", err)
		}
		s.browser = b
		bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
			UserAgent: optionalString(pm.cfg.UserAgent),
			Viewport:  pm.viewport(),
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not create browser context: %w", err)
		}
		s.context = bctx
	}

	if len(pm.cookies) > 0 {
		if err := s.context.AddCookies(pm.cookies); err != nil {
			log.Printf("⚠️ Could not add cookies: %v", err)
		}
	}

	// persistent contexts start with a blank tab already open
	if pages := s.context.Pages(); len(pages) > 0 {
		s.page = pages[0]
	} else {
		page, err := s.context.NewPage()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not create page: %w", err)
		}
		s.page = page
	}
	if pm.cfg.NavigationTimeout > 0 {
		s.page.SetDefaultNavigationTimeout(float64(pm.cfg.NavigationTimeout.Milliseconds()))
	}
	return s, nil
}

// Close stops the playwright driver
func (pm *PlaywrightManager) Close() error {
	if pm.pw == nil {
		return nil
	}
	return pm.pw.Stop()
}

type playwrightSession struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

func (s *playwrightSession) Navigate(url string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (s *playwrightSession) WaitFor(selector string, timeout time.Duration) error {
	if s.closed {
		return ErrClosed
	}
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, selector, timeout)
	}
	return err
}

func (s *playwrightSession) FindOne(selectors ...string) (Element, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var lastErr error
	for _, sel := range selectors {
		loc := s.page.Locator(sel)
		n, err := loc.Count()
		if err != nil {
			lastErr = err
			continue
		}
		if n > 0 {
			return &playwrightElement{loc: loc.First()}, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNotFound
}

func (s *playwrightSession) ScrollToBottom() error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}

func (s *playwrightSession) Screenshot(path string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// Close releases page, context and browser. Later calls return the first result.
func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		var errs []error
		if s.page != nil {
			errs = append(errs, s.page.Close())
		}
		if s.context != nil {
			errs = append(errs, s.context.Close())
		}
		if s.browser != nil {
			errs = append(errs, s.browser.Close())
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e *playwrightElement) Text() (string, error) {
	return e.loc.InnerText()
}

func (e *playwrightElement) RenderedText() (string, error) {
	v, err := e.loc.Evaluate("el => el.innerText", nil)
	if err != nil {
		return "", err
	}
	text, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected innerText type %T", v)
	}
	return text, nil
}

func (e *playwrightElement) Activate() error {
	_, err := e.loc.Evaluate("el => el.click()", nil)
	return err
}
