package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound 表示指定 key 下没有保存任何值。
var ErrNotFound = errors.New("history slot not found")

// KeyPrefix 是挑选历史在存储中的 key 前缀。
const KeyPrefix = "picked-aphorisms"

// Key 返回某位访客对应的历史 key。
func Key(visitor string) string {
	if visitor == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + visitor
}

// Slot 是以字符串为 key 的持久化存储。
type Slot interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend 表示存储后端类型。
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Options 描述打开存储后端所需的参数。
type Options struct {
	Backend  Backend
	Dir      string
	DBPath   string
	RedisURL string
	TTL      time.Duration
}

// Open 按 Options 打开对应的存储后端，返回的 close 函数用于释放资源。
func Open(ctx context.Context, opts Options) (Slot, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory, "":
		return NewMemorySlot(), noop, nil
	case BackendFile:
		slot, err := NewFileSlot(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return slot, noop, nil
	case BackendSQLite:
		slot, err := OpenSQLiteSlot(opts.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil
	case BackendRedis:
		client, err := OpenRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisSlot(client, opts.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history backend: %s", opts.Backend)
	}
}

// MemorySlot 将值保存在进程内存中，进程退出即丢失。
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlot 创建一个空的内存存储。
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

func (m *MemorySlot) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemorySlot) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
