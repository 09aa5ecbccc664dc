package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Erm2130/buu-api/internal/config"
	"github.com/Erm2130/buu-api/internal/notifier"
	"github.com/Erm2130/buu-api/internal/rooms"
	"github.com/Erm2130/buu-api/internal/scraper"
	"github.com/Erm2130/buu-api/internal/server"
	"github.com/Erm2130/buu-api/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: auto-detect)")
	testEmail := flag.Bool("test-email", false, "send a test email and exit")
	flag.Parse()

	// .env is optional, hosted deployments inject real environment variables.
	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ โหลดการตั้งค่าไม่สำเร็จ (failed to load config): %v", err)
	}

	var emailNotifier *notifier.EmailNotifier
	if cfg.Notify.Email.Enabled {
		emailNotifier = notifier.NewEmailNotifier(cfg.Notify.Email)
	}

	if *testEmail {
		if emailNotifier == nil {
			log.Fatal("❌ อีเมลยังไม่ได้เปิดใช้งาน (email notifications are not enabled in config)")
		}
		if err := emailNotifier.TestConnection(); err != nil {
			log.Fatalf("❌ ทดสอบอีเมลไม่สำเร็จ (test email failed): %v", err)
		}
		log.Println("✅ ส่งอีเมลทดสอบแล้ว (test email sent successfully)")
		return
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("❌ เปิดที่เก็บข้อมูลไม่สำเร็จ (failed to open store): %v", err)
	}
	defer st.Close()
	log.Printf("💾 ที่เก็บข้อมูล (store backend): %s", cfg.Store.Backend)

	resolver := rooms.NewResolver(filepath.Join(cfg.Server.StaticDir, "maps"), cfg.Server.BaseURL)
	scrapeService := scraper.New(cfg.Portal.URL, cfg.Portal.Headless, resolver)

	h := server.NewHandler(scrapeService, st)
	e := server.NewRouter(h, cfg.Server.StaticDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Notify.LineChannelToken != "" {
		line, err := notifier.NewLineNotifier(cfg.Notify.LineChannelToken)
		if err != nil {
			log.Fatalf("❌ ตั้งค่า LINE ไม่สำเร็จ (failed to set up LINE client): %v", err)
		}
		dispatcher := notifier.NewDispatcher(st, line, emailNotifier)
		loop := &digestLoop{dispatcher: dispatcher, hour: cfg.Notify.PushHour}
		go loop.run(ctx)
		log.Printf("⏰ แจ้งเตือนตารางเรียนรายวันเวลา %02d:00 (daily digest scheduled)", cfg.Notify.PushHour)
	} else {
		log.Println("💤 ไม่ได้ตั้งค่า LINE ข้ามการแจ้งเตือนรายวัน (LINE token not set, daily digest disabled)")
	}

	go func() {
		log.Printf("🚀 เริ่มเซิร์ฟเวอร์ที่พอร์ต %s (starting server)", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ เซิร์ฟเวอร์หยุดทำงาน (server stopped): %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("👋 กำลังปิดเซิร์ฟเวอร์ (shutting down)...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ ปิดเซิร์ฟเวอร์ไม่เรียบร้อย (shutdown error): %v", err)
	}
}

// digestLoop fires the daily LINE digest once per day at the configured hour.
type digestLoop struct {
	dispatcher *notifier.Dispatcher
	hour       int
	lastSent   string
}

func (l *digestLoop) run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.tick(ctx, now)
		}
	}
}

func (l *digestLoop) tick(ctx context.Context, now time.Time) {
	if now.Hour() != l.hour {
		return
	}
	day := now.Format("2006-01-02")
	if day == l.lastSent {
		return
	}
	l.lastSent = day

	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := l.dispatcher.SendDaily(sendCtx, now); err != nil {
		log.Printf("⚠️ ส่งแจ้งเตือนรายวันไม่สำเร็จ (daily digest failed): %v", err)
	}
}
