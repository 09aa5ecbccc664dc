package notifier

import (
	"context"
	"log"
	"time"

	"github.com/Erm2130/buu-api/internal/models"
	"github.com/Erm2130/buu-api/internal/store"
)

// Dispatcher runs the daily digest round: read every record carrying a LINE
// token, build today's digests, and push them one by one.
type Dispatcher struct {
	store store.Store
	line  *LineNotifier
	email *EmailNotifier // nil when SMTP is not configured
}

func NewDispatcher(st store.Store, line *LineNotifier, email *EmailNotifier) *Dispatcher {
	return &Dispatcher{store: st, line: line, email: email}
}

// SendDaily pushes today's digest to every user who has one. A failed push
// skips that user only; the round keeps going.
func (d *Dispatcher) SendDaily(ctx context.Context, now time.Time) error {
	records, err := d.store.ListWithToken(ctx)
	if err != nil {
		return err
	}

	digests := BuildDailyDigests(records, now)
	if len(digests) == 0 {
		log.Printf("💤 วัน%sไม่มีคลาสต้องแจ้งเตือน (no digests today)", ThaiWeekday(now))
		return nil
	}

	var sent []models.DailyDigest
	failed := 0
	for _, digest := range digests {
		if err := d.line.PushDigest(digest); err != nil {
			log.Printf("⚠️ ส่งแจ้งเตือนให้ %s ไม่สำเร็จ: %v", digest.Username, err)
			failed++
			continue
		}
		sent = append(sent, digest)
	}
	log.Printf("📨 ส่งแจ้งเตือนวัน%sแล้ว %d ราย, ไม่สำเร็จ %d ราย (digest round done)",
		ThaiWeekday(now), len(sent), failed)

	if d.email != nil {
		if err := d.email.SendDigestReport(sent, failed, now); err != nil {
			log.Printf("⚠️ ส่งอีเมลสรุปไม่สำเร็จ (failed to send report email): %v", err)
		}
	}
	return nil
}
