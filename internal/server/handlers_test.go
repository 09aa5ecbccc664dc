package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Erm2130/buu-api/internal/models"
	"github.com/Erm2130/buu-api/internal/notifier"
	"github.com/Erm2130/buu-api/internal/scraper"
	"github.com/Erm2130/buu-api/internal/store"
)

type stubScraper struct {
	courses []models.Course
	err     error
	calls   int
}

func (s *stubScraper) Scrape(username, password string) ([]models.Course, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.courses, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func sampleCourses() []models.Course {
	return []models.Course{
		{
			Code:   "88634259-59",
			NameEN: "DATABASE SYSTEMS I",
			NameTH: "ระบบฐานข้อมูล 1",
			Sessions: []models.ScheduleSession{
				{Day: "จันทร์", Time: "09:00-12:00", Room: "IF-3C01", Building: "อาคารเทคโนโลยีสารสนเทศ"},
			},
		},
	}
}

func newTestServer(t *testing.T, sc Scraper) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "users_db.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewRouter(NewHandler(sc, st), t.TempDir()), st
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.Contains(rec.Header().Get("Content-Type"), "json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an envelope: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestFetchTimetableStoresAndReturns(t *testing.T) {
	sc := &stubScraper{courses: sampleCourses()}
	h, st := newTestServer(t, sc)

	rec, env := doRequest(t, h, http.MethodPost, "/timetable",
		`{"username":"64160123","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}

	var courses []models.Course
	if err := json.Unmarshal(env.Data, &courses); err != nil {
		t.Fatalf("data is not a course list: %v", err)
	}
	if len(courses) != 1 || courses[0].Code != "88634259-59" {
		t.Errorf("returned courses = %+v", courses)
	}

	stored, err := st.Get(context.Background(), "64160123")
	if err != nil {
		t.Fatalf("record was not persisted: %v", err)
	}
	if len(stored.Schedule) != 1 {
		t.Errorf("stored schedule = %+v", stored.Schedule)
	}
}

func TestFetchTimetableWrongPasswordPersistsNothing(t *testing.T) {
	sc := &stubScraper{err: scraper.ErrWrongPassword}
	h, st := newTestServer(t, sc)

	rec, env := doRequest(t, h, http.MethodPost, "/timetable",
		`{"username":"64160123","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Status != "error" || env.Code != "wrong_password" {
		t.Errorf("envelope = %+v", env)
	}

	if _, err := st.Get(context.Background(), "64160123"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("a failed scrape must not leave a record behind, Get returned %v", err)
	}
}

func TestFetchTimetableFailureMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"login failed", scraper.ErrLoginFailed, http.StatusBadGateway, "login_failed"},
		{"grid timeout", scraper.ErrGridTimeout, http.StatusGatewayTimeout, "grid_timeout"},
		{"unclassified", errors.New("playwright exploded"), http.StatusInternalServerError, "scrape_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestServer(t, &stubScraper{err: tc.err})
			rec, env := doRequest(t, h, http.MethodPost, "/timetable",
				`{"username":"64160123","password":"secret"}`)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if env.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", env.Code, tc.wantCode)
			}
		})
	}
}

func TestFetchTimetableRejectsMissingFields(t *testing.T) {
	sc := &stubScraper{}
	h, _ := newTestServer(t, sc)

	rec, env := doRequest(t, h, http.MethodPost, "/timetable", `{"username":"64160123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Code != "bad_request" {
		t.Errorf("code = %q", env.Code)
	}
	if sc.calls != 0 {
		t.Errorf("scraper must not run without full credentials, ran %d times", sc.calls)
	}
}

func TestSaveLineTokenAndDailySchedules(t *testing.T) {
	h, st := newTestServer(t, &stubScraper{})

	rec, _ := doRequest(t, h, http.MethodPost, "/save-line-token",
		`{"username":"64160123","line_token":"U1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save-line-token status = %d", rec.Code)
	}

	today := notifier.ThaiWeekday(time.Now())
	err := st.UpsertSchedule(context.Background(), "64160123", []models.Course{
		{
			Code:   "88634259-59",
			NameTH: "ระบบฐานข้อมูล 1",
			Sessions: []models.ScheduleSession{
				{Day: today, Time: "09:00-12:00", Room: "IF-3C01"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	rec, env := doRequest(t, h, http.MethodGet, "/daily-schedule-all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("daily-schedule-all status = %d", rec.Code)
	}
	var digests []models.DailyDigest
	if err := json.Unmarshal(env.Data, &digests); err != nil {
		t.Fatalf("data is not a digest list: %v", err)
	}
	if len(digests) != 1 || env.Count != 1 {
		t.Fatalf("got %d digests (count %d), want 1: %+v", len(digests), env.Count, digests)
	}
	if digests[0].LineUserID != "U1" || digests[0].Day != today {
		t.Errorf("digest = %+v", digests[0])
	}
}

func TestGetTimetable(t *testing.T) {
	h, st := newTestServer(t, &stubScraper{})

	rec, env := doRequest(t, h, http.MethodGet, "/timetable/ghost", "")
	if rec.Code != http.StatusNotFound || env.Code != "not_found" {
		t.Errorf("unknown user: status %d code %q", rec.Code, env.Code)
	}

	if err := st.UpsertSchedule(context.Background(), "64160123", sampleCourses()); err != nil {
		t.Fatal(err)
	}
	rec, env = doRequest(t, h, http.MethodGet, "/timetable/64160123", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stored models.UserRecord
	if err := json.Unmarshal(env.Data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Username != "64160123" || len(stored.Schedule) != 1 {
		t.Errorf("record = %+v", stored)
	}
}

func TestExportTimetable(t *testing.T) {
	h, st := newTestServer(t, &stubScraper{})
	if err := st.UpsertSchedule(context.Background(), "64160123", sampleCourses()); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/timetable/64160123/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if body := rec.Body.Bytes(); len(body) < 2 || body[0] != 'P' || body[1] != 'K' {
		t.Error("body does not look like an xlsx archive")
	}
}
