package scraper

import "errors"

// Classified scrape failures. Callers distinguish them with errors.Is; any
// other error coming out of Scrape is an unclassified navigation or parsing
// failure, wrapped with context.
var (
	// ErrWrongPassword: the portal showed its explicit rejection message.
	ErrWrongPassword = errors.New("รหัสผ่านไม่ถูกต้อง (portal rejected the credentials)")
	// ErrLoginFailed: no rejection message, but the timetable menu never
	// appeared after submitting the form.
	ErrLoginFailed = errors.New("เข้าสู่ระบบไม่สำเร็จ (login not confirmed by the portal)")
	// ErrGridTimeout: login succeeded but the timetable grid never rendered
	// within its wait bound.
	ErrGridTimeout = errors.New("ตารางเรียนโหลดไม่ขึ้น (timetable grid never rendered)")
)
