package scraper

import (
	"fmt"
	"log"
	"time"

	"github.com/Erm2130/buu-api/internal/browser"
)

// Landmarks of the registration portal. The pages carry almost no stable
// ids, so the login flow is driven by visible Thai text and input names.
const (
	loginLinkText = "เข้าสู่ระบบ"
	timetableLink = "ตารางเรียน/สอบ"
	wrongPassText = "รหัสผ่านไม่ถูกต้อง"
	userField     = "input[name='f_uid']"
	passField     = "input[name='f_pwd']"
	submitButton  = "input[type='submit']"
	legendTable   = "#myTable"
)

// Wait bounds for each navigation step. The portal renders slowly and never
// reaches a quiet network state, so every step gets a generous but finite
// bound.
const (
	portalTimeout = 60 * time.Second
	domTimeout    = 10 * time.Second
	fieldTimeout  = 10 * time.Second
	settleDelay   = 3 * time.Second
	gridTimeout   = 15 * time.Second
)

// Navigator drives one browser session through the portal's login flow to
// the timetable page.
type Navigator struct {
	portalURL string
}

func NewNavigator(portalURL string) *Navigator {
	return &Navigator{portalURL: portalURL}
}

// FetchTimetablePage logs in with the given credentials, opens the
// timetable view, and returns the page's serialized HTML. Failures the
// portal reports come back classified as ErrWrongPassword, ErrLoginFailed,
// or ErrGridTimeout; anything else is a navigation error with context.
func (n *Navigator) FetchTimetablePage(c *browser.Client, username, password string) (string, error) {
	if err := c.Goto(n.portalURL, portalTimeout); err != nil {
		return "", fmt.Errorf("เปิดหน้าพอร์ทัลไม่สำเร็จ (failed to open portal): %w", err)
	}
	// Best effort: the portal keeps streaming banners long after the DOM is
	// usable.
	_ = c.WaitLoaded(domTimeout)

	if err := n.revealLoginForm(c); err != nil {
		return "", err
	}

	if err := c.Fill(userField, username); err != nil {
		return "", fmt.Errorf("กรอกรหัสนิสิตไม่สำเร็จ (failed to fill username): %w", err)
	}
	if err := c.Fill(passField, password); err != nil {
		return "", fmt.Errorf("กรอกรหัสผ่านไม่สำเร็จ (failed to fill password): %w", err)
	}
	if err := c.ClickForce(submitButton); err != nil {
		return "", fmt.Errorf("กดปุ่มเข้าสู่ระบบไม่สำเร็จ (failed to submit login): %w", err)
	}
	time.Sleep(settleDelay)

	if !c.HasText(timetableLink) {
		if c.HasText(wrongPassText) {
			log.Println("❌ เข้าสู่ระบบไม่สำเร็จ: รหัสผ่านผิด (wrong password)")
			return "", ErrWrongPassword
		}
		log.Println("❌ เข้าสู่ระบบไม่สำเร็จ (timetable menu missing after submit)")
		return "", ErrLoginFailed
	}
	log.Println("✅ เข้าสู่ระบบสำเร็จ (logged in)")

	if err := c.ClickText(timetableLink); err != nil {
		return "", fmt.Errorf("เปิดหน้าตารางเรียนไม่สำเร็จ (failed to open timetable view): %w", err)
	}
	time.Sleep(settleDelay)

	if err := c.WaitVisible(legendTable, gridTimeout); err != nil {
		log.Println("❌ ตารางเรียนไม่ขึ้นภายในเวลาที่กำหนด (grid never rendered)")
		return "", ErrGridTimeout
	}

	page, err := c.Content()
	if err != nil {
		return "", fmt.Errorf("อ่านหน้าเว็บไม่สำเร็จ (failed to read page): %w", err)
	}
	return page, nil
}

// revealLoginForm gets the credential fields on screen. The form hides
// behind a "เข้าสู่ระบบ" link that sometimes fails to render on first load,
// so a missing link gets one full reload before moving on.
func (n *Navigator) revealLoginForm(c *browser.Client) error {
	if c.Has(userField) {
		return nil
	}
	if c.HasText(loginLinkText) {
		return n.openLoginLink(c)
	}

	log.Println("🔄 ไม่พบลิงก์เข้าสู่ระบบ ลองโหลดหน้าใหม่ (login link missing, reloading once)")
	if err := c.Reload(); err != nil {
		return fmt.Errorf("โหลดหน้าใหม่ไม่สำเร็จ (reload failed): %w", err)
	}
	_ = c.WaitLoaded(domTimeout)
	if c.HasText(loginLinkText) {
		return n.openLoginLink(c)
	}
	// Some mirrors render the form inline without the link; the field fill
	// reports the failure if it is genuinely absent.
	return nil
}

func (n *Navigator) openLoginLink(c *browser.Client) error {
	if err := c.ClickText(loginLinkText); err != nil {
		return fmt.Errorf("กดลิงก์เข้าสู่ระบบไม่สำเร็จ (failed to click login link): %w", err)
	}
	if err := c.WaitVisible(userField, fieldTimeout); err != nil {
		return fmt.Errorf("ฟอร์มเข้าสู่ระบบไม่ขึ้น (login form never appeared): %w", err)
	}
	return nil
}
