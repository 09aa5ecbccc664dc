package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Client owns one headless-browser session: one driver, one browser, one
// context, one page. A Client serves a single scrape and never reuses
// storage state from a previous one.
type Client struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch starts Chromium and opens a fresh page.
// Browsers must be installed beforehand:
// go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
func Launch(headless bool) (*Client, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("เริ่ม Playwright ไม่สำเร็จ (failed to start Playwright): %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("เปิดเบราว์เซอร์ไม่สำเร็จ (failed to launch browser): %w", err)
	}

	context, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("สร้างคอนเท็กซ์ไม่สำเร็จ (failed to create context): %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("สร้างเพจไม่สำเร็จ (failed to create page): %w", err)
	}
	page.SetDefaultTimeout(60000)
	page.SetDefaultNavigationTimeout(60000)

	return &Client{pw: pw, browser: b, context: context, page: page}, nil
}

// Goto navigates to url, bounded by timeout.
func (c *Client) Goto(url string, timeout time.Duration) error {
	_, err := c.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(ms(timeout)),
	})
	return err
}

// WaitLoaded waits for the DOM to finish parsing, bounded by timeout.
func (c *Client) WaitLoaded(timeout time.Duration) error {
	return c.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(ms(timeout)),
	})
}

// Reload reloads the current page.
func (c *Client) Reload() error {
	_, err := c.page.Reload()
	return err
}

// Has reports whether the page currently contains a node matching selector.
func (c *Client) Has(selector string) bool {
	count, err := c.page.Locator(selector).Count()
	return err == nil && count > 0
}

// HasText reports whether the page currently shows the given text.
func (c *Client) HasText(text string) bool {
	count, err := c.page.Locator("text=" + text).Count()
	return err == nil && count > 0
}

// ClickText clicks the first node showing the given text.
func (c *Client) ClickText(text string) error {
	return c.page.Locator("text=" + text).First().Click()
}

// WaitVisible waits until a node matching selector is visible, bounded by
// timeout.
func (c *Client) WaitVisible(selector string, timeout time.Duration) error {
	return c.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(ms(timeout)),
	})
}

// Fill types value into the field matching selector.
func (c *Client) Fill(selector, value string) error {
	return c.page.Locator(selector).Fill(value)
}

// ClickForce clicks the first node matching selector without waiting for it
// to be actionable. The portal's submit button sits under a decorative
// overlay that never settles.
func (c *Client) ClickForce(selector string) error {
	return c.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Force: playwright.Bool(true),
	})
}

// Content returns the full serialized HTML of the current page.
func (c *Client) Content() (string, error) {
	return c.page.Content()
}

// Close releases the page, context, browser, and driver in order. Safe on a
// partially released client.
func (c *Client) Close() error {
	if c.page != nil {
		c.page.Close()
		c.page = nil
	}
	if c.context != nil {
		c.context.Close()
		c.context = nil
	}
	if c.browser != nil {
		c.browser.Close()
		c.browser = nil
	}
	if c.pw != nil {
		c.pw.Stop()
		c.pw = nil
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
