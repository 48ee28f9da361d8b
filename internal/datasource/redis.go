package datasource

import (
	"context"
	"fmt"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// redisOptions splits a source URL into client options and the key. The
// key parameter is ours, so it is removed before go-redis sees the URL.
func redisOptions(rawURL string) (*redis.Options, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid redis URL: %w", err)
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, "", fmt.Errorf("invalid redis URL: %w", err)
	}
	return opts, key, nil
}

// ReadRedis loads nodes from a Redis key. A string key holds a JSON node
// document; a list key holds one JSON node object per element.
func ReadRedis(ctx context.Context, rawURL string, warn func(string)) ([]model.Node, error) {
	opts, key, err := redisOptions(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	defer client.Close()

	kind, err := client.Type(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis TYPE %s: %w", key, err)
	}

	warn = warnOrDiscard(warn)
	switch kind {
	case "string":
		data, err := client.Get(ctx, key).Bytes()
		if err != nil {
			return nil, fmt.Errorf("redis GET %s: %w", key, err)
		}
		return decodeBytes(data, warn)
	case "list":
		items, err := client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("redis LRANGE %s: %w", key, err)
		}
		entries := make([]any, 0, len(items))
		for i, item := range items {
			var obj map[string]any
			if err := json.Unmarshal([]byte(item), &obj); err != nil {
				warn(fmt.Sprintf("skipping list element %d: %v", i, err))
				continue
			}
			entries = append(entries, obj)
		}
		return decodeEntries(entries, warn), nil
	case "none":
		return nil, fmt.Errorf("redis key %s does not exist", key)
	default:
		return nil, fmt.Errorf("redis key %s has unsupported type %s", key, kind)
	}
}

// WriteRedis stores nodes as a JSON array under the URL's key.
func WriteRedis(ctx context.Context, rawURL string, nodes []model.Node) error {
	opts, key, err := redisOptions(rawURL)
	if err != nil {
		return err
	}
	client := redis.NewClient(opts)
	defer client.Close()

	data, err := json.Marshal(model.NormalizeAll(nodes))
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}
