package usage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "usage"
	// Counters roll off after 35 days so month-over-month views stay
	// available without unbounded growth.
	counterTTL = 35 * 24 * time.Hour
)

// Tracker accumulates per-user operation counters in Redis. Keys follow
// usage:{userID}:{yyyy-mm-dd}:{op} and are bumped with INCRBY, so writes
// from concurrent workers never lose increments.
type Tracker struct {
	client *redis.Client
}

// Config holds the Redis connection settings for the tracker
type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewTracker(cfg Config) (*Tracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("usage tracker: %w", err)
	}

	return &Tracker{client: client}, nil
}

// BuildKey composes the counter key for one user, day and operation
func BuildKey(userID string, day time.Time, op string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, userID, day.UTC().Format("2006-01-02"), op)
}

// ParseKey splits a counter key back into its day and operation parts.
// The user id may itself contain colons, so the key is split from the
// right.
func ParseKey(key string) (userID, day, op string, err error) {
	parts := strings.Split(key, ":")
	if len(parts) < 4 || parts[0] != keyPrefix {
		return "", "", "", fmt.Errorf("malformed usage key %q", key)
	}
	op = parts[len(parts)-1]
	day = parts[len(parts)-2]
	userID = strings.Join(parts[1:len(parts)-2], ":")
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", "", "", fmt.Errorf("malformed usage key %q", key)
	}
	return userID, day, op, nil
}

// Record bumps the user's counter for the operation by cost
func (t *Tracker) Record(ctx context.Context, userID, op string, cost int64) error {
	if userID == "" || op == "" || cost <= 0 {
		return nil
	}

	key := BuildKey(userID, time.Now(), op)
	pipe := t.client.Pipeline()
	pipe.IncrBy(ctx, key, cost)
	pipe.Expire(ctx, key, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// DayUsage is the aggregated counters for a single day
type DayUsage struct {
	Day   string           `json:"day"`
	Ops   map[string]int64 `json:"ops"`
	Total int64            `json:"total"`
}

// Summary aggregates all live counters for the user, newest day first
func (t *Tracker) Summary(ctx context.Context, userID string) ([]DayUsage, error) {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, userID)

	var keys []string
	iter := t.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []DayUsage{}, nil
	}

	values, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayUsage)
	for i, key := range keys {
		raw, ok := values[i].(string)
		if !ok {
			continue // expired between SCAN and MGET
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}

		_, day, op, err := ParseKey(key)
		if err != nil {
			continue
		}

		usage, ok := byDay[day]
		if !ok {
			usage = &DayUsage{Day: day, Ops: make(map[string]int64)}
			byDay[day] = usage
		}
		usage.Ops[op] += count
		usage.Total += count
	}

	days := make([]DayUsage, 0, len(byDay))
	for _, usage := range byDay {
		days = append(days, *usage)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day > days[j].Day })
	return days, nil
}

func (t *Tracker) Close() error {
	return t.client.Close()
}
