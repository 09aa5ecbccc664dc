package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Erm2130/buu-api/internal/models"
)

// Weekday labels exactly as the timetable grid prints them. Session days
// are matched against these strings, so they must not be reformatted.
var thaiWeekdays = map[time.Weekday]string{
	time.Sunday:    "อาทิตย์",
	time.Monday:    "จันทร์",
	time.Tuesday:   "อังคาร",
	time.Wednesday: "พุธ",
	time.Thursday:  "พฤหัสบดี",
	time.Friday:    "ศุกร์",
	time.Saturday:  "เสาร์",
}

// ThaiWeekday returns the portal's label for the weekday of t.
func ThaiWeekday(t time.Time) string {
	return thaiWeekdays[t.Weekday()]
}

// BuildDailyDigests collects, for every record, the classes meeting on the
// weekday of now, sorted by starting time. Users with no classes that day
// are left out.
func BuildDailyDigests(records []models.UserRecord, now time.Time) []models.DailyDigest {
	day := ThaiWeekday(now)
	var out []models.DailyDigest
	for _, rec := range records {
		classes := classesOn(rec.Schedule, day)
		if len(classes) == 0 {
			continue
		}
		out = append(out, models.DailyDigest{
			Username:   rec.Username,
			LineUserID: rec.LineToken,
			Day:        day,
			Classes:    classes,
		})
	}
	return out
}

func classesOn(schedule []models.Course, day string) []models.DigestClass {
	var classes []models.DigestClass
	for _, course := range schedule {
		for _, s := range course.Sessions {
			if s.Day != day {
				continue
			}
			classes = append(classes, models.DigestClass{
				Code:     course.Code,
				NameEN:   course.NameEN,
				NameTH:   course.NameTH,
				Time:     s.Time,
				Room:     s.Room,
				Building: s.Building,
				MapImage: s.MapImage,
			})
		}
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return startMinute(classes[i].Time) < startMinute(classes[j].Time)
	})
	return classes
}

// startMinute extracts the starting minute of day from a "HH:MM-HH:MM"
// range. Slots without a parseable time ("-") sort last.
func startMinute(timeRange string) int {
	start, _, _ := strings.Cut(timeRange, "-")
	t, err := time.Parse("15:04", strings.TrimSpace(start))
	if err != nil {
		return 24 * 60
	}
	return t.Hour()*60 + t.Minute()
}

// DigestMessage renders one digest as the plain-text push message.
func DigestMessage(d models.DailyDigest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📅 ตารางเรียนวัน%s\n", d.Day))

	for _, c := range d.Classes {
		name := c.NameTH
		if name == "" {
			name = c.NameEN
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("🕘 %s\n", c.Time))
		sb.WriteString(fmt.Sprintf("📖 %s (%s)\n", name, c.Code))
		sb.WriteString(fmt.Sprintf("📍 ห้อง %s %s\n", c.Room, c.Building))
	}

	sb.WriteString("\nไปเรียนเถอะ อย่าโดดนะ! 📚")
	return sb.String()
}
