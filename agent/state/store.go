package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

var (
	ErrStateNotFound  = errors.New("session history not found")
	ErrInvalidSession = errors.New("user id is empty")
)

const (
	defaultStoreKeyPrefix = "wholesale:session:"
	defaultStoreTTL       = 24 * time.Hour
)

const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendUpstash = "upstash"
)

// Config selects the session backend.
type Config struct {
	Backend   string        `split_words:"true" default:"memory"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	KeyPrefix string        `split_words:"true" default:"wholesale:session:"`
}

// Options converts the config into store options for the remote backends.
func (c Config) Options() []StoreOption {
	return []StoreOption{WithKeyPrefix(c.KeyPrefix), WithTTL(c.TTL)}
}

// Store is the session persistence contract used by the orchestrator.
type Store interface {
	// Get returns ErrStateNotFound when the user has no history.
	Get(ctx context.Context, userID string) (History, error)
	Set(ctx context.Context, userID string, h History) error
	// Delete is idempotent.
	Delete(ctx context.Context, userID string) error
}

type storeOptions struct {
	keyPrefix  string
	ttl        time.Duration
	httpClient *http.Client
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
	}
}

// StoreOption customizes the remote stores.
type StoreOption func(*storeOptions)

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			o.keyPrefix = trimmed
		}
	}
}

// WithTTL sets the expiry of stored histories. Zero disables expiry.
func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(o *storeOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func applyStoreOptions(opts []StoreOption) (storeOptions, error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.ttl < 0 {
		return o, errors.New("ttl must be >= 0")
	}
	return o, nil
}

func sessionKey(prefix, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrInvalidSession
	}
	return prefix + userID, nil
}

func encodeHistory(h History) ([]byte, error) {
	if h == nil {
		h = History{}
	}
	payload, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal session history: %w", err)
	}
	return payload, nil
}

// decodeHistory reports undecodable payloads as corrupt sessions.
func decodeHistory(raw []byte) (History, error) {
	var h History
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: decode session history: %v", errx.ErrCorruptSession, err)
	}
	return h, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
