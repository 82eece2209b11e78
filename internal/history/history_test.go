package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis keeps lists in memory and implements the handful of commands
// the store issues. Anything else panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	lists     map[string][]string
	ttl       map[string]time.Duration
	lastRange [2]int64
	txErr     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{lists: map[string][]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) TxPipelined(_ context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	p := &fakePipe{}
	if err := fn(p); err != nil {
		return nil, err
	}
	for _, op := range p.ops {
		op(f)
	}
	return nil, nil
}

func (f *fakeRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.lastRange = [2]int64{start, stop}
	list := f.lists[key]
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	return redis.NewStringSliceResult(append([]string(nil), list[start:stop+1]...), nil)
}

// fakePipe queues commands until the transaction is executed.
type fakePipe struct {
	redis.Pipeliner
	ops []func(*fakeRedis)
}

func (p *fakePipe) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, func(f *fakeRedis) {
		for _, v := range values {
			var s string
			switch v := v.(type) {
			case []byte:
				s = string(v)
			default:
				s = fmt.Sprint(v)
			}
			f.lists[key] = append([]string{s}, f.lists[key]...)
		}
	})
	return redis.NewIntCmd(ctx)
}

func (p *fakePipe) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	p.ops = append(p.ops, func(f *fakeRedis) {
		list := f.lists[key]
		if stop+1 < int64(len(list)) {
			f.lists[key] = list[start : stop+1]
		}
	})
	return redis.NewStatusCmd(ctx)
}

func (p *fakePipe) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.ops = append(p.ops, func(f *fakeRedis) { f.ttl[key] = expiration })
	return redis.NewBoolCmd(ctx)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "generation:Sneakers", Key("Sneakers"))
}

func TestStore_AppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	s := &Store{Client: rdb}

	require.NoError(t, s.Append(ctx, Entry{Kind: "title", Subcategory: "Caps", Value: "first"}))
	require.NoError(t, s.Append(ctx, Entry{Kind: "description", Subcategory: "Caps", Value: "second"}))
	require.NoError(t, s.Append(ctx, Entry{Kind: "title", Subcategory: "Boots", Value: "other"}))

	entries, err := s.List(ctx, "Caps", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Value)
	assert.Equal(t, "first", entries[1].Value)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.Equal(t, entryTTL, rdb.ttl[Key("Caps")])
	assert.Equal(t, entryTTL, rdb.ttl[Key("Boots")])
}

func TestStore_AppendKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := &Store{Client: newFakeRedis()}
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	require.NoError(t, s.Append(ctx, Entry{Kind: "image", Subcategory: "Caps", Value: "https://x/y.png", CreatedAt: at}))

	entries, err := s.List(ctx, "Caps", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, at.Equal(entries[0].CreatedAt))
}

func TestStore_AppendTrimsToLimit(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	s := &Store{Client: rdb}

	for i := 0; i < entryLimit+7; i++ {
		require.NoError(t, s.Append(ctx, Entry{Kind: "title", Subcategory: "Caps", Value: fmt.Sprintf("v%d", i)}))
	}

	assert.Len(t, rdb.lists[Key("Caps")], entryLimit)
	entries, err := s.List(ctx, "Caps", 0)
	require.NoError(t, err)
	require.Len(t, entries, entryLimit)
	assert.Equal(t, fmt.Sprintf("v%d", entryLimit+6), entries[0].Value)
	assert.Equal(t, "v7", entries[entryLimit-1].Value)
}

func TestStore_ListClampsLimit(t *testing.T) {
	tests := []struct {
		limit    int
		wantStop int64
	}{
		{0, entryLimit - 1},
		{-3, entryLimit - 1},
		{entryLimit + 100, entryLimit - 1},
		{5, 4},
		{1, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			rdb := newFakeRedis()
			s := &Store{Client: rdb}

			entries, err := s.List(context.Background(), "Caps", tt.limit)
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Equal(t, [2]int64{0, tt.wantStop}, rdb.lastRange)
		})
	}
}

func TestStore_AppendError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.txErr = errors.New("connection refused")
	s := &Store{Client: rdb}

	err := s.Append(context.Background(), Entry{Kind: "title", Subcategory: "Caps", Value: "x"})
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, rdb.lists)
}

func TestDecodeEntries(t *testing.T) {
	entries, err := decodeEntries([]string{
		`{"kind":"title","subcategory":"Caps","value":"Summer Cap","createdAt":"2026-01-02T03:04:05Z"}`,
		`{"kind":"image","subcategory":"Caps","value":"https://x/y.png","details":{"style_index":2},"createdAt":"2026-01-01T00:00:00Z"}`,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Summer Cap", entries[0].Value)
	assert.Equal(t, 2026, entries[0].CreatedAt.Year())
	assert.Equal(t, float64(2), entries[1].Details["style_index"])

	_, err = decodeEntries([]string{"not json"})
	assert.Error(t, err)
}
