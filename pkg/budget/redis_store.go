package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// redisTxRetries bounds the optimistic retry loop when concurrent writers
// keep invalidating the watched key.
const redisTxRetries = 16

// RedisStore keeps the ledger in a Redis sorted set so several processes
// can share one budget. Members are JSON-encoded records scored by their
// timestamp in microseconds; Append runs as a WATCH/MULTI optimistic
// transaction so the check-and-append stays atomic across writers.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a Redis-backed ledger store using the given key.
// Reuse the same key across processes that share a budget.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = "z402:budget"
	}
	return &RedisStore{client: client, key: key}
}

// redisRecord is the wire form of a Record. The nonce keeps members unique
// even when a transaction ID is recorded twice within one microsecond.
type redisRecord struct {
	Nonce         string   `json:"nonce"`
	Amount        string   `json:"amount"`
	TransactionID string   `json:"transaction_id"`
	TimestampUs   int64    `json:"ts_us"`
	Metadata      Metadata `json:"metadata,omitempty"`
}

func (s *RedisStore) Append(ctx context.Context, rec Record, limits Limits) error {
	member, err := json.Marshal(redisRecord{
		Nonce:         uuid.NewString(),
		Amount:        rec.Amount.String(),
		TransactionID: rec.TransactionID,
		TimestampUs:   rec.Timestamp.UnixMicro(),
		Metadata:      rec.Metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal spend record: %w", err)
	}

	txn := func(tx *redis.Tx) error {
		daily, hourly, err := windowSums(ctx, tx, s.key, rec.Timestamp)
		if err != nil {
			return err
		}

		if daily.Add(rec.Amount).GreaterThan(limits.Daily) {
			return fmt.Errorf("%w: daily spend %s + %s exceeds limit %s",
				ErrBudgetExceeded, daily, rec.Amount, limits.Daily)
		}
		if limits.HasHourly() && hourly.Add(rec.Amount).GreaterThan(limits.Hourly) {
			return fmt.Errorf("%w: hourly spend %s + %s exceeds limit %s",
				ErrBudgetExceeded, hourly, rec.Amount, limits.Hourly)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, s.key, redis.Z{
				Score:  float64(rec.Timestamp.UnixMicro()),
				Member: string(member),
			})
			return nil
		})
		return err
	}

	for i := 0; i < redisTxRetries; i++ {
		err := s.client.Watch(ctx, txn, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrStoreContention
}

// windowSums reads the trailing 24h members once and derives both window
// totals from that single snapshot.
func windowSums(ctx context.Context, c redis.Cmdable, key string, now time.Time) (daily, hourly decimal.Decimal, err error) {
	members, err := c.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(now.Add(-DailyWindow).UnixMicro(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("read spend window: %w", err)
	}

	daily, hourly = decimal.Zero, decimal.Zero
	hourlyStartUs := now.Add(-HourlyWindow).UnixMicro()
	for _, m := range members {
		rec, err := decodeRedisRecord(m)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		daily = daily.Add(rec.Amount)
		if rec.Timestamp.UnixMicro() >= hourlyStartUs {
			hourly = hourly.Add(rec.Amount)
		}
	}
	return daily, hourly, nil
}

func (s *RedisStore) SpentSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	records, err := s.History(ctx, since)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total, nil
}

func (s *RedisStore) History(ctx context.Context, since time.Time) ([]Record, error) {
	members, err := s.client.ZRangeByScore(ctx, s.key, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMicro(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read spend history: %w", err)
	}

	out := make([]Record, 0, len(members))
	for _, m := range members {
		rec, err := decodeRedisRecord(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Compact(ctx context.Context, olderThan time.Time) (int, error) {
	removed, err := s.client.ZRemRangeByScore(ctx, s.key,
		"-inf", "("+strconv.FormatInt(olderThan.UnixMicro(), 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("compact spend history: %w", err)
	}
	return int(removed), nil
}

func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("reset spend history: %w", err)
	}
	return nil
}

func decodeRedisRecord(member string) (Record, error) {
	var rr redisRecord
	if err := json.Unmarshal([]byte(member), &rr); err != nil {
		return Record{}, fmt.Errorf("decode spend record: %w", err)
	}
	amount, err := decimal.NewFromString(rr.Amount)
	if err != nil {
		return Record{}, fmt.Errorf("decode spend amount %q: %w", rr.Amount, err)
	}
	return Record{
		Amount:        amount,
		TransactionID: rr.TransactionID,
		Timestamp:     time.UnixMicro(rr.TimestampUs),
		Metadata:      rr.Metadata,
	}, nil
}
