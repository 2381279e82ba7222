package record

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/redis/go-redis/v9"
)

// RedisRecorder pushes every episode to the list <prefix>:<experiment>:<run>
type RedisRecorder struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ types.TraceRecorder = &RedisRecorder{}

func NewRedisRecorder(addr, prefix string) *RedisRecorder {
	return &RedisRecorder{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: time.Second,
		}),
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

// Ping checks the server is reachable
func (r *RedisRecorder) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRecorder) Key(experiment string, run int) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, experiment, run)
}

func (r *RedisRecorder) Record(experiment string, run, episode int, trace *types.Trace) error {
	bs, err := encode(experiment, run, episode, trace)
	if err != nil {
		return errors.Wrapf(err, "encoding episode %d", episode)
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.RPush(ctx, r.Key(experiment, run), bs).Err(); err != nil {
		return errors.Wrapf(err, "pushing episode %d", episode)
	}
	return nil
}

// Len is the number of episodes recorded for the run
func (r *RedisRecorder) Len(ctx context.Context, experiment string, run int) (int64, error) {
	return r.client.LLen(ctx, r.Key(experiment, run)).Result()
}

// Episodes recorded for the run, in recording order
func (r *RedisRecorder) Episodes(ctx context.Context, experiment string, run int) ([]Entry, error) {
	raw, err := r.client.LRange(ctx, r.Key(experiment, run), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(raw))
	for i, s := range raw {
		if err := json.Unmarshal([]byte(s), &entries[i]); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}
	}
	return entries, nil
}

// Clear removes the episodes of the run
func (r *RedisRecorder) Clear(ctx context.Context, experiment string, run int) error {
	return r.client.Del(ctx, r.Key(experiment, run)).Err()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
