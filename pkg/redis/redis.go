package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrScriptNotLoaded is returned by EvalShaByName for unknown script names
var ErrScriptNotLoaded = errors.New("script not loaded")

// Config holds Redis connection settings
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns connection settings for a local Redis
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Client wraps go-redis with a registry of named Lua scripts
type Client struct {
	*goredis.Client

	mu      sync.RWMutex
	scripts map[string]string // name -> sha
}

// NewClient connects and pings Redis
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return Wrap(rdb), nil
}

// Wrap adopts an existing go-redis client
func Wrap(rdb *goredis.Client) *Client {
	return &Client{Client: rdb, scripts: make(map[string]string)}
}

// LoadScript uploads a Lua script and remembers its SHA under name
func (c *Client) LoadScript(ctx context.Context, name, script string) error {
	sha, err := c.ScriptLoad(ctx, script).Result()
	if err != nil {
		return fmt.Errorf("failed to load script %s: %w", name, err)
	}
	c.mu.Lock()
	c.scripts[name] = sha
	c.mu.Unlock()
	return nil
}

// EvalShaByName runs a script previously registered with LoadScript
func (c *Client) EvalShaByName(ctx context.Context, name string, keys []string, args ...interface{}) *goredis.Cmd {
	c.mu.RLock()
	sha, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		cmd := goredis.NewCmd(ctx)
		cmd.SetErr(fmt.Errorf("%w: %s", ErrScriptNotLoaded, name))
		return cmd
	}
	return c.EvalSha(ctx, sha, keys, args...)
}

// HealthCheck pings Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
