package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rollbook-service/internal/domain"
)

// AttendanceStore keeps one hash per date:
//
//	HSET attendance:day:{date} {studentID} {P|L}
//
// plus a set of known dates for the overall view. Absent entries are never
// written; marking a student absent removes the field.
type AttendanceStore struct {
	client *redis.Client
}

func NewAttendanceStore(client *redis.Client) *AttendanceStore {
	return &AttendanceStore{client: client}
}

func (s *AttendanceStore) SetStatus(ctx context.Context, date, studentID string, status domain.Status) error {
	if status == domain.StatusAbsent {
		if err := s.client.HDel(ctx, s.dayKey(date), studentID).Err(); err != nil {
			return fmt.Errorf("clear status: %w", err)
		}
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.dayKey(date), studentID, status.Code())
	pipe.SAdd(ctx, s.daysKey(), date)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func (s *AttendanceStore) ResetDay(ctx context.Context, date string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.dayKey(date))
	pipe.SRem(ctx, s.daysKey(), date)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reset day: %w", err)
	}
	return nil
}

func (s *AttendanceStore) GetDay(ctx context.Context, date string) (map[string]domain.Status, error) {
	fields, err := s.client.HGetAll(ctx, s.dayKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("get day: %w", err)
	}
	return dayFromFields(fields), nil
}

// MergeDay commits one import batch for a date. The MULTI pipeline makes the
// batch atomic; fields for students outside the batch are left as they are.
func (s *AttendanceStore) MergeDay(ctx context.Context, date string, entries map[string]domain.Status) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for id, status := range entries {
		if status == domain.StatusAbsent {
			pipe.HDel(ctx, s.dayKey(date), id)
			continue
		}
		pipe.HSet(ctx, s.dayKey(date), id, status.Code())
	}
	pipe.SAdd(ctx, s.daysKey(), date)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("merge day: %w", err)
	}
	return nil
}

func (s *AttendanceStore) AllDays(ctx context.Context) (map[string]map[string]domain.Status, error) {
	dates, err := s.client.SMembers(ctx, s.daysKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	out := make(map[string]map[string]domain.Status, len(dates))
	for _, date := range dates {
		fields, err := s.client.HGetAll(ctx, s.dayKey(date)).Result()
		if err != nil {
			return nil, fmt.Errorf("get day %s: %w", date, err)
		}
		out[date] = dayFromFields(fields)
	}
	return out, nil
}

func (s *AttendanceStore) dayKey(date string) string {
	return "attendance:day:" + date
}

func (s *AttendanceStore) daysKey() string {
	return "attendance:days"
}

func dayFromFields(fields map[string]string) map[string]domain.Status {
	day := make(map[string]domain.Status, len(fields))
	for id, code := range fields {
		if status, ok := domain.ParseStatusCode(code); ok {
			day[id] = status
		}
	}
	return day
}
