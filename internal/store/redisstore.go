package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Erm2130/buu-api/internal/models"
)

const redisUsersKey = "timetable:users"

func redisUserKey(username string) string {
	return "timetable:user:" + username
}

// RedisStore keeps each record in its own hash plus a set of known
// usernames. It fits hosts whose local disk is wiped on every restart.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379"
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis URL ไม่ถูกต้อง (invalid redis URL): %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("เชื่อมต่อ Redis ไม่สำเร็จ (failed to connect to redis): %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) UpsertSchedule(ctx context.Context, username string, schedule []models.Course) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("แปลงตารางเรียนเป็น JSON ไม่สำเร็จ (failed to marshal schedule): %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisUserKey(username),
		"schedule", data,
		"last_updated", time.Now().Format(time.RFC3339),
	)
	pipe.SAdd(ctx, redisUsersKey, username)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("บันทึกตารางเรียนไม่สำเร็จ (failed to upsert schedule): %w", err)
	}
	return nil
}

func (s *RedisStore) SaveLineToken(ctx context.Context, username, token string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisUserKey(username), "line_token", token)
	pipe.SAdd(ctx, redisUsersKey, username)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("บันทึก LINE token ไม่สำเร็จ (failed to save line token): %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, username string) (*models.UserRecord, error) {
	fields, err := s.client.HGetAll(ctx, redisUserKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("อ่านข้อมูลผู้ใช้ไม่สำเร็จ (failed to fetch user record): %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := models.UserRecord{
		Username:  username,
		LineToken: fields["line_token"],
	}
	if raw := fields["schedule"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Schedule); err != nil {
			return nil, fmt.Errorf("แปลงตารางเรียนไม่สำเร็จ (failed to parse stored schedule): %w", err)
		}
	}
	if raw := fields["last_updated"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			rec.LastUpdated = t
		}
	}
	return &rec, nil
}

func (s *RedisStore) ListWithToken(ctx context.Context) ([]models.UserRecord, error) {
	names, err := s.client.SMembers(ctx, redisUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("อ่านรายชื่อผู้ใช้ไม่สำเร็จ (failed to list usernames): %w", err)
	}
	sort.Strings(names)

	out := make([]models.UserRecord, 0, len(names))
	for _, name := range names {
		rec, err := s.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.LineToken != "" {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
