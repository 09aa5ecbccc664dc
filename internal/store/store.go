package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erm2130/buu-api/internal/config"
	"github.com/Erm2130/buu-api/internal/models"
)

// ErrNotFound is returned when a username has no stored record.
var ErrNotFound = errors.New("ไม่พบข้อมูลผู้ใช้ (user record not found)")

// Store persists per-student timetable records keyed by username. Records
// hold scraped results and push tokens only; portal credentials are never
// written anywhere.
type Store interface {
	// UpsertSchedule replaces the user's stored timetable, creating the
	// record if needed. A saved LINE token is left untouched.
	UpsertSchedule(ctx context.Context, username string, schedule []models.Course) error
	// SaveLineToken sets the user's LINE push target, creating the record
	// if needed. A stored timetable is left untouched.
	SaveLineToken(ctx context.Context, username, token string) error
	// Get returns the record for username, or ErrNotFound.
	Get(ctx context.Context, username string) (*models.UserRecord, error)
	// ListWithToken returns every record carrying a LINE token, ordered by
	// username.
	ListWithToken(ctx context.Context) ([]models.UserRecord, error)
	Close() error
}

// Open builds the backend named by cfg. The choice is made once at process
// start; handlers never look at the environment again.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "json":
		return NewJSONStore(cfg.JSONPath)
	case "postgres":
		return NewGormStore(cfg.PostgresDSN)
	case "redis":
		return NewRedisStore(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("ไม่รู้จัก store backend %q (unknown store backend)", cfg.Backend)
	}
}
