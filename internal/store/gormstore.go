package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Erm2130/buu-api/internal/models"
)

// userRow is the GORM shape of a user record. The schedule lives in a JSON
// column so the backend stays interchangeable with the file store.
type userRow struct {
	Username    string          `gorm:"primaryKey;size:64"`
	Schedule    []models.Course `gorm:"serializer:json"`
	LineToken   string          `gorm:"size:128"`
	LastUpdated time.Time
}

func (userRow) TableName() string { return "user_schedules" }

// GormStore persists records in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(dsn string) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres backend ต้องการ DSN (postgres backend needs a DSN)")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("เชื่อมต่อ PostgreSQL ไม่สำเร็จ (failed to connect to postgres): %w", err)
	}
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("เตรียมตารางไม่สำเร็จ (failed to migrate schema): %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) UpsertSchedule(ctx context.Context, username string, schedule []models.Course) error {
	row := userRow{
		Username:    username,
		Schedule:    schedule,
		LastUpdated: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"schedule", "last_updated"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("บันทึกตารางเรียนไม่สำเร็จ (failed to upsert schedule): %w", err)
	}
	return nil
}

func (s *GormStore) SaveLineToken(ctx context.Context, username, token string) error {
	row := userRow{
		Username:  username,
		LineToken: token,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"line_token"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("บันทึก LINE token ไม่สำเร็จ (failed to save line token): %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, username string) (*models.UserRecord, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("อ่านข้อมูลผู้ใช้ไม่สำเร็จ (failed to fetch user record): %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (s *GormStore) ListWithToken(ctx context.Context) ([]models.UserRecord, error) {
	var rows []userRow
	err := s.db.WithContext(ctx).
		Where("line_token <> ''").
		Order("username").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("อ่านรายชื่อผู้ใช้ไม่สำเร็จ (failed to list user records): %w", err)
	}
	out := make([]models.UserRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r userRow) record() models.UserRecord {
	return models.UserRecord{
		Username:    r.Username,
		Schedule:    r.Schedule,
		LineToken:   r.LineToken,
		LastUpdated: r.LastUpdated,
	}
}
