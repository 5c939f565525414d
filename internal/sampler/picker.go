package sampler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"aphorist/internal/history"
)

// Pick 是一次随机挑选的结果。
type Pick struct {
	// Index 是被选中条目在条目序列中的下标。
	Index int
	// Reset 表示本次挑选前历史已满，已开始新的一轮。
	Reset bool
	// Seen 是本轮已展示过的条目数量（含本次）。
	Seen int
}

// Picker 从 Slot 中读取挑选历史，抽取下一个未展示过的下标并写回。
type Picker struct {
	slot  history.Slot
	rng   Rand
	locks keyedMutex
}

// Option 配置 Picker。
type Option func(*Picker)

// WithRand 指定随机源，主要用于测试。rng 的调用会被串行化。
func WithRand(rng Rand) Option {
	return func(p *Picker) {
		p.rng = &lockedRand{rng: rng}
	}
}

type lockedRand struct {
	mu  sync.Mutex
	rng Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// NewPicker 创建一个使用指定 Slot 的 Picker。
func NewPicker(slot history.Slot, opts ...Option) *Picker {
	p := &Picker{
		slot:  slot,
		rng:   globalRand{},
		locks: keyedMutex{locks: make(map[string]*refLock)},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PickNext 为 key 对应的历史抽取 [0, n) 中的下一个下标。
//
// n <= 0 时不做任何事并返回 ok=false。存储读写失败只记录日志，不影响本次结果。
func (p *Picker) PickNext(ctx context.Context, key string, n int) (Pick, bool) {
	if n <= 0 {
		return Pick{}, false
	}

	unlock := p.locks.lock(key)
	defer unlock()

	past := p.load(ctx, key, n)
	index, next, reset := Next(p.rng, n, past)

	if reset {
		if err := p.slot.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "clear pick history", "key", key, "error", err)
		}
	}
	p.store(ctx, key, next)

	return Pick{Index: index, Reset: reset, Seen: len(next)}, true
}

// History 返回 key 当前保存的挑选历史（已整理）。
func (p *Picker) History(ctx context.Context, key string, n int) []int {
	unlock := p.locks.lock(key)
	defer unlock()
	return p.load(ctx, key, n)
}

// Clear 删除 key 对应的挑选历史。
func (p *Picker) Clear(ctx context.Context, key string) error {
	unlock := p.locks.lock(key)
	defer unlock()
	return p.slot.Delete(ctx, key)
}

func (p *Picker) load(ctx context.Context, key string, n int) []int {
	raw, err := p.slot.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			slog.WarnContext(ctx, "load pick history", "key", key, "error", err)
		}
		return nil
	}

	past, dropped, err := DecodeHistory(raw, n)
	if err != nil {
		slog.WarnContext(ctx, "discard pick history", "key", key, "error", err)
		return nil
	}
	if dropped > 0 {
		slog.DebugContext(ctx, "dropped stale pick history entries", "key", key, "dropped", dropped, "items", n)
	}
	return past
}

func (p *Picker) store(ctx context.Context, key string, next []int) {
	raw, err := EncodeHistory(next)
	if err != nil {
		slog.ErrorContext(ctx, "encode pick history", "key", key, "error", err)
		return
	}
	if err := p.slot.Set(ctx, key, raw); err != nil {
		slog.WarnContext(ctx, "failed to store pick history, the same item may be picked again",
			"key", key, "error", err)
	}
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex 为每个 key 提供独立的互斥锁，不再使用的锁会被回收。
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
