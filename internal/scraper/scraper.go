package scraper

import (
	"log"

	"github.com/Erm2130/buu-api/internal/browser"
	"github.com/Erm2130/buu-api/internal/models"
)

// Service runs complete scrapes: launch a browser, log in, pull the
// timetable page, parse it, and reconcile it into Courses.
type Service struct {
	nav        *Navigator
	reconciler *Reconciler
	headless   bool
}

// New creates a Service for the given portal. Credentials are passed per
// call, never stored.
func New(portalURL string, headless bool, rooms RoomResolver) *Service {
	return &Service{
		nav:        NewNavigator(portalURL),
		reconciler: NewReconciler(rooms),
		headless:   headless,
	}
}

// Scrape fetches and assembles the weekly timetable for one student. Every
// call gets a fresh browser session that is released before returning,
// whatever the outcome.
func (s *Service) Scrape(username, password string) ([]models.Course, error) {
	log.Printf("🚀 เริ่มดึงตารางเรียนของ %s (starting scrape)", username)

	client, err := browser.Launch(s.headless)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	page, err := s.nav.FetchTimetablePage(client, username, password)
	if err != nil {
		return nil, err
	}

	legend, err := ParseLegend([]byte(page))
	if err != nil {
		return nil, err
	}
	rows, err := ParseGrid([]byte(page))
	if err != nil {
		return nil, err
	}

	courses := s.reconciler.Reconcile(legend, rows)
	log.Printf("✅ ได้ตารางเรียน %d วิชา (scrape finished)", len(courses))
	return courses, nil
}
