package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Erm2130/buu-api/internal/models"
	"github.com/Erm2130/buu-api/internal/notifier"
	"github.com/Erm2130/buu-api/internal/scraper"
	"github.com/Erm2130/buu-api/internal/store"
)

// Scraper runs one full portal scrape. *scraper.Service satisfies it; tests
// substitute a stub so no browser is involved.
type Scraper interface {
	Scrape(username, password string) ([]models.Course, error)
}

// Handler carries the dependencies behind the HTTP API.
type Handler struct {
	scraper Scraper
	store   store.Store
}

func NewHandler(s Scraper, st store.Store) *Handler {
	return &Handler{scraper: s, store: st}
}

type timetableRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type lineTokenRequest struct {
	Username  string `json:"username"`
	LineToken string `json:"line_token"`
}

// Health reports liveness for the hosting platform's checks.
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// FetchTimetable scrapes the portal with the submitted credentials, stores
// the result under the username, and returns it. The password lives only
// for the duration of this request and never reaches the store or the logs.
func (h *Handler) FetchTimetable(c echo.Context) error {
	var req timetableRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request",
			"ต้องส่ง username และ password (username and password are required)")
	}
	if req.Username == "" || req.Password == "" {
		return respondError(c, http.StatusBadRequest, "bad_request",
			"ต้องส่ง username และ password (username and password are required)")
	}

	courses, err := h.scraper.Scrape(req.Username, req.Password)
	if err != nil {
		return h.scrapeError(c, err)
	}

	if err := h.store.UpsertSchedule(c.Request().Context(), req.Username, courses); err != nil {
		log.Printf("⚠️ บันทึกตารางเรียนของ %s ไม่สำเร็จ: %v", req.Username, err)
		return respondError(c, http.StatusInternalServerError, "store_error",
			"บันทึกตารางเรียนไม่สำเร็จ (failed to store the schedule)")
	}
	return respondData(c, courses)
}

// GetTimetable returns the stored record for a username without touching
// the portal.
func (h *Handler) GetTimetable(c echo.Context) error {
	username := c.Param("username")
	rec, err := h.store.Get(c.Request().Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		return respondError(c, http.StatusNotFound, "not_found",
			"ยังไม่มีตารางเรียนของผู้ใช้นี้ (no stored timetable for this user)")
	}
	if err != nil {
		log.Printf("⚠️ อ่านข้อมูลของ %s ไม่สำเร็จ: %v", username, err)
		return respondError(c, http.StatusInternalServerError, "store_error",
			"อ่านข้อมูลไม่สำเร็จ (failed to read the record)")
	}
	return respondData(c, rec)
}

// SaveLineToken binds a LINE user id to a username for the daily digest.
func (h *Handler) SaveLineToken(c echo.Context) error {
	var req lineTokenRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request",
			"ต้องส่ง username และ line_token (username and line_token are required)")
	}
	if req.Username == "" || req.LineToken == "" {
		return respondError(c, http.StatusBadRequest, "bad_request",
			"ต้องส่ง username และ line_token (username and line_token are required)")
	}

	if err := h.store.SaveLineToken(c.Request().Context(), req.Username, req.LineToken); err != nil {
		log.Printf("⚠️ บันทึก LINE token ของ %s ไม่สำเร็จ: %v", req.Username, err)
		return respondError(c, http.StatusInternalServerError, "store_error",
			"บันทึก LINE token ไม่สำเร็จ (failed to save the token)")
	}
	return respondData(c, echo.Map{"username": req.Username})
}

// DailySchedules returns today's digest for every user carrying a LINE
// token. The external automation flow polls this every morning.
func (h *Handler) DailySchedules(c echo.Context) error {
	records, err := h.store.ListWithToken(c.Request().Context())
	if err != nil {
		log.Printf("⚠️ อ่านรายชื่อผู้ใช้ไม่สำเร็จ: %v", err)
		return respondError(c, http.StatusInternalServerError, "store_error",
			"อ่านรายชื่อผู้ใช้ไม่สำเร็จ (failed to list users)")
	}

	digests := notifier.BuildDailyDigests(records, time.Now())
	if digests == nil {
		digests = []models.DailyDigest{}
	}
	// The n8n flow that fans these out reads count and data.
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"count":  len(digests),
		"data":   digests,
	})
}

// scrapeError maps a classified scrape failure onto a status code and a
// stable error code the frontend can branch on.
func (h *Handler) scrapeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, scraper.ErrWrongPassword):
		return respondError(c, http.StatusUnauthorized, "wrong_password",
			"รหัสนิสิตหรือรหัสผ่านไม่ถูกต้อง (wrong username or password)")
	case errors.Is(err, scraper.ErrLoginFailed):
		return respondError(c, http.StatusBadGateway, "login_failed",
			"เข้าสู่ระบบทะเบียนไม่สำเร็จ (portal login failed)")
	case errors.Is(err, scraper.ErrGridTimeout):
		return respondError(c, http.StatusGatewayTimeout, "grid_timeout",
			"ระบบทะเบียนไม่แสดงตารางเรียน (timetable grid timed out)")
	default:
		log.Printf("⚠️ ดึงตารางเรียนล้มเหลว: %v", err)
		return respondError(c, http.StatusInternalServerError, "scrape_error",
			"ดึงตารางเรียนไม่สำเร็จ (scrape failed)")
	}
}

func respondData(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   data,
	})
}

func respondError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}
