package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Erm2130/buu-api/internal/config"
	"github.com/Erm2130/buu-api/internal/rooms"
	"github.com/Erm2130/buu-api/internal/scraper"
)

var (
	username   string
	password   string
	configPath string
	headless   bool
	outPath    string
	initConfig bool
)

func init() {
	flag.StringVar(&username, "user", "", "รหัสนิสิต (student ID, falls back to BUU_USERNAME)")
	flag.StringVar(&password, "pass", "", "รหัสผ่าน (password, falls back to BUU_PASSWORD)")
	flag.StringVar(&configPath, "config", "", "path to config file (default: auto-detect)")
	flag.BoolVar(&headless, "headless", true, "run the browser in the background")
	flag.StringVar(&outPath, "out", "", "write the timetable JSON to this file instead of stdout")
	flag.BoolVar(&initConfig, "init-config", false, "write a default config file and exit")
}

func main() {
	flag.Parse()

	_ = godotenv.Load()

	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	if initConfig {
		if err := config.Save(configPath, config.Default()); err != nil {
			log.Fatalf("❌ สร้างไฟล์ตั้งค่าไม่สำเร็จ (failed to write config): %v", err)
		}
		fmt.Printf("✅ สร้างไฟล์ตั้งค่าแล้วที่ %s\n", configPath)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ โหลดการตั้งค่าไม่สำเร็จ (failed to load config): %v", err)
	}
	if !headless {
		cfg.Portal.Headless = false
	}

	if username == "" {
		username = os.Getenv("BUU_USERNAME")
	}
	if password == "" {
		password = os.Getenv("BUU_PASSWORD")
	}
	if username == "" || password == "" {
		log.Fatal("❌ ต้องระบุรหัสนิสิตและรหัสผ่าน (missing credentials, use -user/-pass or BUU_USERNAME/BUU_PASSWORD)")
	}

	fmt.Println("========================================")
	fmt.Println("   ตารางเรียน มหาวิทยาลัยบูรพา (BUU)")
	fmt.Println("========================================")
	fmt.Printf("👤 ผู้ใช้: %s\n", username)
	fmt.Printf("🌐 พอร์ทัล: %s\n", cfg.Portal.URL)
	fmt.Println("----------------------------------------")

	resolver := rooms.NewResolver(filepath.Join(cfg.Server.StaticDir, "maps"), cfg.Server.BaseURL)
	svc := scraper.New(cfg.Portal.URL, cfg.Portal.Headless, resolver)

	courses, err := svc.Scrape(username, password)
	switch {
	case errors.Is(err, scraper.ErrWrongPassword):
		log.Fatal("❌ รหัสผ่านไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง (wrong password)")
	case errors.Is(err, scraper.ErrLoginFailed):
		log.Fatal("❌ เข้าสู่ระบบไม่สำเร็จ พอร์ทัลอาจมีปัญหา (login failed, the portal may be down)")
	case errors.Is(err, scraper.ErrGridTimeout):
		log.Fatal("❌ โหลดตารางเรียนไม่ทัน กรุณาลองใหม่ (timetable page timed out)")
	case err != nil:
		log.Fatalf("❌ ดึงตารางเรียนไม่สำเร็จ (scrape failed): %v", err)
	}

	sessions := 0
	fmt.Println("\n📋 รายวิชา:")
	for _, course := range courses {
		name := course.NameTH
		if name == "" {
			name = course.NameEN
		}
		fmt.Printf("  • %s %s (%d คาบ)\n", course.Code, name, len(course.Sessions))
		sessions += len(course.Sessions)
	}
	fmt.Printf("\n📊 รวม %d วิชา %d คาบ\n", len(courses), sessions)

	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		log.Fatalf("❌ แปลงข้อมูลไม่สำเร็จ (failed to marshal timetable): %v", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			log.Fatalf("❌ บันทึกไฟล์ไม่สำเร็จ (failed to write output file): %v", err)
		}
		fmt.Printf("💾 บันทึกแล้วที่ %s\n", outPath)
		return
	}

	fmt.Println()
	os.Stdout.Write(data)
	fmt.Println()
}
