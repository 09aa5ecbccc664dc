package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Portal PortalConfig `yaml:"portal"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Notify NotifyConfig `yaml:"notify"`
}

// PortalConfig represents the registration portal settings
type PortalConfig struct {
	URL      string `yaml:"url"`
	Headless bool   `yaml:"headless"`
}

// ServerConfig represents the HTTP API settings
type ServerConfig struct {
	Port      string `yaml:"port"`
	BaseURL   string `yaml:"base_url"`   // public prefix for static map image URLs
	StaticDir string `yaml:"static_dir"` // served under /static
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Backend     string `yaml:"backend"` // json, postgres or redis
	JSONPath    string `yaml:"json_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	RedisURL    string `yaml:"redis_url"`
}

// NotifyConfig represents the daily digest push settings
type NotifyConfig struct {
	LineChannelToken string      `yaml:"line_channel_token"`
	PushHour         int         `yaml:"push_hour"` // local hour (0-23) the digest goes out
	Email            EmailConfig `yaml:"email"`
}

// EmailConfig represents email notification settings
type EmailConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
	From    string     `yaml:"from"`
	To      []string   `yaml:"to"`
	Subject string     `yaml:"subject"`
}

// SMTPConfig represents SMTP server settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Portal: PortalConfig{
			URL:      "https://reg.buu.ac.th/",
			Headless: true,
		},
		Server: ServerConfig{
			Port:      "8080",
			BaseURL:   "http://localhost:8080",
			StaticDir: "static",
		},
		Store: StoreConfig{
			Backend:  "json",
			JSONPath: filepath.Join("Database", "users_db.json"),
		},
		Notify: NotifyConfig{
			PushHour: 7,
			Email: EmailConfig{
				Subject: "📚 สรุปแจ้งเตือนตารางเรียน BUU",
			},
		},
	}
}

// GetConfigPath finds the configuration file path
func GetConfigPath() string {
	// 1. configs/config.yaml next to the executable
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	configPath := filepath.Join(execDir, "configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 2. configs/config.yaml in the current directory
	configPath = filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 3. ~/.buu-api/config.yaml
	homeDir, _ := os.UserHomeDir()
	configPath = filepath.Join(homeDir, ".buu-api", "config.yaml")

	configDir := filepath.Dir(configPath)
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		os.MkdirAll(configDir, 0755)
	}

	return configPath
}

// Load reads the configuration file and applies environment overrides. A
// missing file is not an error: hosted deployments configure everything
// through the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// keep defaults
	case err != nil:
		return nil, fmt.Errorf("อ่านไฟล์ตั้งค่าไม่สำเร็จ (failed to read config file): %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("แปลงไฟล์ตั้งค่าไม่สำเร็จ (failed to parse config file): %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv maps the deployment environment onto the config. The names match
// what Render and the older deployments already export.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("RENDER_EXTERNAL_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("LINE_CHANNEL_TOKEN"); v != "" {
		c.Notify.LineChannelToken = v
	}
}

// Save saves the configuration to file
func Save(path string, cfg *Config) error {
	if path == "" {
		path = GetConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("สร้างไดเรกทอรีไม่สำเร็จ (failed to create directory): %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("แปลงการตั้งค่าไม่สำเร็จ (failed to marshal config): %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("บันทึกไฟล์ตั้งค่าไม่สำเร็จ (failed to write config file): %w", err)
	}

	return nil
}
