package notifier

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Erm2130/buu-api/internal/config"
	"github.com/Erm2130/buu-api/internal/models"
)

// EmailNotifier mails the operator a summary of each digest run. LINE
// reaches the students; this reaches whoever keeps the service alive.
type EmailNotifier struct {
	config config.EmailConfig
	auth   smtp.Auth
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)

	return &EmailNotifier{
		config: cfg,
		auth:   auth,
	}
}

// SendDigestReport mails a summary of a completed digest run.
func (e *EmailNotifier) SendDigestReport(digests []models.DailyDigest, failed int, ranAt time.Time) error {
	if len(digests) == 0 && failed == 0 {
		return nil
	}

	body := e.buildReportBody(digests, failed, ranAt)
	message := e.buildMessage(body)

	addr := fmt.Sprintf("%s:%d", e.config.SMTP.Host, e.config.SMTP.Port)
	if err := smtp.SendMail(addr, e.auth, e.config.From, e.config.To, []byte(message)); err != nil {
		return fmt.Errorf("ส่งอีเมลไม่สำเร็จ (failed to send email): %w", err)
	}

	return nil
}

// buildReportBody creates the email body content
func (e *EmailNotifier) buildReportBody(digests []models.DailyDigest, failed int, ranAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("สรุปการแจ้งเตือนตารางเรียนประจำวัน\n")
	sb.WriteString("Daily timetable digest report\n\n")

	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	sb.WriteString(fmt.Sprintf("📨 ส่งสำเร็จ (delivered): %d\n", len(digests)))
	sb.WriteString(fmt.Sprintf("⚠️ ส่งไม่สำเร็จ (failed): %d\n\n", failed))

	for _, d := range digests {
		sb.WriteString(fmt.Sprintf("  ✅ %s: %d คาบ (classes)\n", d.Username, len(d.Classes)))
	}

	sb.WriteString("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	sb.WriteString(fmt.Sprintf("🕐 เวลาที่ส่ง (ran at): %s\n", ranAt.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// buildMessage creates the full email message with headers
func (e *EmailNotifier) buildMessage(body string) string {
	headers := make(map[string]string)
	headers["From"] = e.config.From
	headers["To"] = strings.Join(e.config.To, ", ")
	headers["Subject"] = e.config.Subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=UTF-8"

	var message strings.Builder
	for key, value := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	return message.String()
}

// TestConnection tests the email configuration
func (e *EmailNotifier) TestConnection() error {
	testBody := "อีเมลทดสอบจากระบบตารางเรียน มหาวิทยาลัยบูรพา\n"
	testBody += "This is a test email from the BUU timetable service.\n"
	testBody += fmt.Sprintf("Time: %s", time.Now().Format("2006-01-02 15:04:05"))

	message := e.buildMessage(testBody)
	addr := fmt.Sprintf("%s:%d", e.config.SMTP.Host, e.config.SMTP.Port)

	return smtp.SendMail(addr, e.auth, e.config.From, e.config.To, []byte(message))
}
