package server

import (
	"crypto/rand"
	"sync"
	"time"
)

const (
	sessionCookieName = "aphorist_session"
	sessionTTL        = 12 * time.Hour
)

// sessionStore 保存管理员登录会话，仅存在于内存中。
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]time.Time)}
}

func (s *sessionStore) Create() (string, time.Time) {
	token := newToken()
	now := time.Now()
	expires := now.Add(sessionTTL)

	s.mu.Lock()
	// 顺带清理过期会话
	for t, exp := range s.sessions {
		if now.After(exp) {
			delete(s.sessions, t)
		}
	}
	s.sessions[token] = expires
	s.mu.Unlock()

	return token, expires
}

func (s *sessionStore) Validate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.RLock()
	expires, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	if time.Now().After(expires) {
		s.Remove(token)
		return false
	}
	return true
}

func (s *sessionStore) Remove(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func newToken() string {
	return rand.Text()
}
