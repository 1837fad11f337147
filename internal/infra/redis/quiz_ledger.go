package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"rollbook-service/internal/domain"
)

// Placements are stored as: HSET quiz:day:{date} first|second|third {studentID}
// Totals are stored as:     HSET quiz:totals {studentID} {points}
// plus a set of dates that currently hold placements.
//
// ApplyDayResult runs under WATCH on the day key: the undo of the old
// placements and the application of the new ones commit in one MULTI, so a
// concurrent edit of the same date either fully wins or fully retries. After
// maxTxRetries lost races the caller gets domain.ErrConflict.
type QuizLedger struct {
	client *redis.Client
}

const maxTxRetries = 5

func NewQuizLedger(client *redis.Client) *QuizLedger {
	return &QuizLedger{client: client}
}

func (l *QuizLedger) Day(ctx context.Context, date string) (domain.QuizDay, error) {
	fields, err := l.client.HGetAll(ctx, l.dayKey(date)).Result()
	if err != nil {
		return domain.QuizDay{}, fmt.Errorf("get quiz day: %w", err)
	}
	return dayFromHash(fields), nil
}

func (l *QuizLedger) ApplyDayResult(ctx context.Context, date string, placements domain.QuizDay) error {
	dayKey := l.dayKey(date)

	apply := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, dayKey).Result()
		if err != nil {
			return err
		}
		old := dayFromHash(fields)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for id, pts := range old.Contributions() {
				pipe.HIncrBy(ctx, l.totalsKey(), id, int64(-pts))
			}
			for id, pts := range placements.Contributions() {
				pipe.HIncrBy(ctx, l.totalsKey(), id, int64(pts))
			}
			pipe.Del(ctx, dayKey)
			if placements.IsZero() {
				pipe.SRem(ctx, l.daysKey(), date)
				return nil
			}
			if placements.First != "" {
				pipe.HSet(ctx, dayKey, "first", placements.First)
			}
			if placements.Second != "" {
				pipe.HSet(ctx, dayKey, "second", placements.Second)
			}
			if placements.Third != "" {
				pipe.HSet(ctx, dayKey, "third", placements.Third)
			}
			pipe.SAdd(ctx, l.daysKey(), date)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := l.client.Watch(ctx, apply, dayKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("apply quiz result: %w", err)
	}
	return domain.ErrConflict
}

func (l *QuizLedger) ClearDay(ctx context.Context, date string) error {
	return l.ApplyDayResult(ctx, date, domain.QuizDay{})
}

// ResetAll deletes the totals and every day record in one MULTI. Leaving day
// records behind would let the next edit of any day subtract points that were
// just zeroed out, so the day index is re-read under WATCH: a concurrent
// ApplyDayResult that indexes a new date between read and EXEC forces a retry
// instead of leaving that day's record orphaned with wiped totals.
func (l *QuizLedger) ResetAll(ctx context.Context) error {
	reset := func(tx *redis.Tx) error {
		dates, err := tx.SMembers(ctx, l.daysKey()).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, date := range dates {
				pipe.Del(ctx, l.dayKey(date))
			}
			pipe.Del(ctx, l.daysKey())
			pipe.Del(ctx, l.totalsKey())
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := l.client.Watch(ctx, reset, l.daysKey())
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("reset quiz points: %w", err)
	}
	return domain.ErrConflict
}

func (l *QuizLedger) Totals(ctx context.Context) (map[string]int, error) {
	fields, err := l.client.HGetAll(ctx, l.totalsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}
	totals := make(map[string]int, len(fields))
	for id, raw := range fields {
		pts, err := strconv.Atoi(raw)
		if err != nil || pts == 0 {
			continue
		}
		totals[id] = pts
	}
	return totals, nil
}

func (l *QuizLedger) SeedTotal(ctx context.Context, studentID string, points int) error {
	if points == 0 {
		if err := l.client.HDel(ctx, l.totalsKey(), studentID).Err(); err != nil {
			return fmt.Errorf("seed total: %w", err)
		}
		return nil
	}
	if err := l.client.HSet(ctx, l.totalsKey(), studentID, points).Err(); err != nil {
		return fmt.Errorf("seed total: %w", err)
	}
	return nil
}

func (l *QuizLedger) dayKey(date string) string {
	return "quiz:day:" + date
}

func (l *QuizLedger) daysKey() string {
	return "quiz:days"
}

func (l *QuizLedger) totalsKey() string {
	return "quiz:totals"
}

func dayFromHash(fields map[string]string) domain.QuizDay {
	return domain.QuizDay{
		First:  fields["first"],
		Second: fields["second"],
		Third:  fields["third"],
	}
}
