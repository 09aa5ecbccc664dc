package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Erm2130/buu-api/internal/models"
)

// JSONStore keeps every record in one JSON file and rewrites the whole file
// on each change. It suits a single process with a modest number of users,
// which is what the portal tolerates anyway.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		path = filepath.Join("Database", "users_db.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("สร้างไดเรกทอรีฐานข้อมูลไม่สำเร็จ (failed to create database directory): %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) UpsertSchedule(ctx context.Context, username string, schedule []models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	rec := users[username]
	rec.Username = username
	rec.Schedule = schedule
	rec.LastUpdated = time.Now()
	users[username] = rec
	return s.save(users)
}

func (s *JSONStore) SaveLineToken(ctx context.Context, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	rec := users[username]
	rec.Username = username
	rec.LineToken = token
	users[username] = rec
	return s.save(users)
}

func (s *JSONStore) Get(ctx context.Context, username string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *JSONStore) ListWithToken(ctx context.Context) ([]models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for name, rec := range users {
		if rec.LineToken != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]models.UserRecord, 0, len(names))
	for _, name := range names {
		out = append(out, users[name])
	}
	return out, nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) load() (map[string]models.UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.UserRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("อ่านฐานข้อมูลไม่สำเร็จ (failed to read database file): %w", err)
	}
	users := map[string]models.UserRecord{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("แปลงฐานข้อมูลไม่สำเร็จ (failed to parse database file): %w", err)
	}
	return users, nil
}

// save writes to a temp file in the same directory and renames it over the
// database, so a crash mid-write never leaves a torn file behind.
func (s *JSONStore) save(users map[string]models.UserRecord) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("แปลงข้อมูลเป็น JSON ไม่สำเร็จ (failed to marshal database): %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users_db-*.json")
	if err != nil {
		return fmt.Errorf("สร้างไฟล์ชั่วคราวไม่สำเร็จ (failed to create temp file): %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("เขียนฐานข้อมูลไม่สำเร็จ (failed to write database): %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("ปิดไฟล์ชั่วคราวไม่สำเร็จ (failed to close temp file): %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("สลับไฟล์ฐานข้อมูลไม่สำเร็จ (failed to replace database file): %w", err)
	}
	return nil
}
