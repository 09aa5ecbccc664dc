package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/Erm2130/buu-api/internal/models"
)

// 2025-06-16 was a Monday.
var monday = time.Date(2025, 6, 16, 7, 0, 0, 0, time.Local)

func TestThaiWeekday(t *testing.T) {
	if got := ThaiWeekday(monday); got != "จันทร์" {
		t.Errorf("ThaiWeekday(monday) = %q", got)
	}
	if got := ThaiWeekday(monday.AddDate(0, 0, 5)); got != "เสาร์" {
		t.Errorf("ThaiWeekday(saturday) = %q", got)
	}
}

func TestBuildDailyDigestsFiltersByDay(t *testing.T) {
	records := []models.UserRecord{
		{
			Username:  "64160123",
			LineToken: "U1",
			Schedule: []models.Course{
				{
					Code:   "88634259-59",
					NameTH: "ระบบฐานข้อมูล 1",
					Sessions: []models.ScheduleSession{
						{Day: "จันทร์", Time: "09:00-12:00", Room: "IF-3C01"},
						{Day: "อังคาร", Time: "13:00-16:00", Room: "IF-4C02"},
					},
				},
			},
		},
		{
			Username:  "64160999",
			LineToken: "U2",
			Schedule: []models.Course{
				{
					Code: "26565656-60",
					Sessions: []models.ScheduleSession{
						{Day: "ศุกร์", Time: "09:00-12:00", Room: "QS2-605"},
					},
				},
			},
		},
	}

	digests := BuildDailyDigests(records, monday)
	if len(digests) != 1 {
		t.Fatalf("got %d digests, want 1 (only the user with monday classes): %+v", len(digests), digests)
	}
	d := digests[0]
	if d.Username != "64160123" || d.LineUserID != "U1" || d.Day != "จันทร์" {
		t.Errorf("digest header = %+v", d)
	}
	if len(d.Classes) != 1 || d.Classes[0].Time != "09:00-12:00" {
		t.Errorf("tuesday session leaked into the monday digest: %+v", d.Classes)
	}
}

func TestBuildDailyDigestsSortsByStartTime(t *testing.T) {
	records := []models.UserRecord{
		{
			Username:  "64160123",
			LineToken: "U1",
			Schedule: []models.Course{
				{
					Code: "A",
					Sessions: []models.ScheduleSession{
						{Day: "จันทร์", Time: "-", Room: "-"},
						{Day: "จันทร์", Time: "13:00-16:00", Room: "IF-4C02"},
					},
				},
				{
					Code: "B",
					Sessions: []models.ScheduleSession{
						{Day: "จันทร์", Time: "08:00-09:00", Room: "KB-101"},
					},
				},
			},
		},
	}

	digests := BuildDailyDigests(records, monday)
	if len(digests) != 1 {
		t.Fatalf("got %d digests, want 1", len(digests))
	}
	classes := digests[0].Classes
	if len(classes) != 3 {
		t.Fatalf("got %d classes, want 3", len(classes))
	}
	if classes[0].Time != "08:00-09:00" || classes[1].Time != "13:00-16:00" || classes[2].Time != "-" {
		t.Errorf("classes out of order: %v, %v, %v", classes[0].Time, classes[1].Time, classes[2].Time)
	}
}

func TestDigestMessage(t *testing.T) {
	msg := DigestMessage(models.DailyDigest{
		Username: "64160123",
		Day:      "จันทร์",
		Classes: []models.DigestClass{
			{Code: "88634259-59", NameTH: "ระบบฐานข้อมูล 1", NameEN: "DATABASE SYSTEMS I", Time: "09:00-12:00", Room: "IF-3C01", Building: "อาคารเทคโนโลยีสารสนเทศ"},
			{Code: "26565656-60", NameEN: "ENGLISH FOR COMMUNICATION", Time: "13:00-16:00", Room: "QS2-605", Building: "อาคารเฉลิมพระเกียรติฯ"},
		},
	})

	if !strings.Contains(msg, "ตารางเรียนวันจันทร์") {
		t.Errorf("message missing day header:\n%s", msg)
	}
	if !strings.Contains(msg, "ระบบฐานข้อมูล 1 (88634259-59)") {
		t.Errorf("message should prefer the Thai name:\n%s", msg)
	}
	if !strings.Contains(msg, "ENGLISH FOR COMMUNICATION (26565656-60)") {
		t.Errorf("message should fall back to the English name:\n%s", msg)
	}
	if !strings.Contains(msg, "ห้อง IF-3C01 อาคารเทคโนโลยีสารสนเทศ") {
		t.Errorf("message missing room line:\n%s", msg)
	}
}
