package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	entryTTL   = 30 * 24 * time.Hour
	entryLimit = 50
	keyPrefix  = "generation:"
)

// Entry is one generated asset: a title, a description or an image URL.
type Entry struct {
	Kind        string         `json:"kind"`
	Subcategory string         `json:"subcategory"`
	Value       string         `json:"value"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Store records generated assets per subcategory, newest first. It is an
// audit trail; nothing reads it back in place of a backend call.
type Store struct {
	Client redis.Cmdable
}

func Key(subcategory string) string {
	return keyPrefix + subcategory
}

func (s *Store) Append(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	key := Key(e.Subcategory)
	_, err = s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, b)
		p.LTrim(ctx, key, 0, entryLimit-1)
		p.Expire(ctx, key, entryTTL)
		return nil
	})
	return err
}

func (s *Store) List(ctx context.Context, subcategory string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > entryLimit {
		limit = entryLimit
	}
	vals, err := s.Client.LRange(ctx, Key(subcategory), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	return decodeEntries(vals)
}

func decodeEntries(vals []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
