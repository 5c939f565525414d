package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"aphorist/internal/slug"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrEmptyText     = errors.New("quote text cannot be empty")
)

// ReservedIDs 与服务端路由冲突，不能作为引言标识符。
var ReservedIDs = map[string]bool{
	"admin":   true,
	"api":     true,
	"healthz": true,
	"login":   true,
	"logout":  true,
	"random":  true,
	"static":  true,
}

var validID = regexp.MustCompile(`^[a-z0-9-]+$`)

// Quote 表示一条引言。
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Quote) SourceText() string      { return q.Text }
func (q *Quote) Identifier() string      { return q.ID }
func (q *Quote) SetIdentifier(id string) { q.ID = id }

// Store 负责将 Quote 持久化到文件系统，每条引言一个 JSON 文件。
type Store struct {
	root string
	mu   sync.RWMutex
}

// NewStore 创建一个指向指定目录的 Store，目录不存在会自动创建。
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("content root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Create 新建一条引言，标识符由文本生成，重复时追加数字后缀。
func (s *Store) Create(text, author string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(Quote{Text: text, Author: author})
}

func (s *Store) create(q Quote) (Quote, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Author = strings.TrimSpace(q.Author)
	if q.Text == "" {
		return Quote{}, ErrEmptyText
	}

	existing, err := s.list()
	if err != nil {
		return Quote{}, err
	}
	for _, e := range existing {
		q.Position = max(q.Position, e.Position+1)
	}

	// 显式给出但不合法的标识符按文本重新生成。
	if q.ID != "" && !validID.MatchString(q.ID) {
		q.ID = ""
	}
	slug.AssignIdentifiers([]*Quote{&q})
	if q.ID == "" {
		q.ID = "quote-" + strconv.Itoa(q.Position+1)
	}

	id, err := s.allocateID(q.ID)
	if err != nil {
		return Quote{}, err
	}
	q.ID = id

	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	if err := s.persist(q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *Store) allocateID(base string) (string, error) {
	if s.available(base) {
		return base, nil
	}
	for i := 2; i < 100; i++ {
		suffix := "-" + strconv.Itoa(i)
		candidate := slug.Truncate(base, slug.MaxIDLength-len(suffix)) + suffix
		if s.available(candidate) {
			return candidate, nil
		}
	}
	return "", errors.New("unable to allocate unique quote id")
}

func (s *Store) available(id string) bool {
	if ReservedIDs[id] {
		return false
	}
	_, err := os.Stat(s.quotePath(id))
	return errors.Is(err, os.ErrNotExist)
}

// Update 修改引言的文本与作者，标识符保持不变。
func (s *Store) Update(id, text, author string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, ErrEmptyText
	}

	existing, err := s.read(id)
	if err != nil {
		return Quote{}, err
	}

	existing.Text = text
	existing.Author = strings.TrimSpace(author)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.persist(existing); err != nil {
		return Quote{}, err
	}
	return existing, nil
}

// Get 读取指定标识符的引言。
func (s *Store) Get(id string) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

// List 返回所有引言，按页面顺序（Position）排列。
func (s *Store) List() ([]Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list()
}

func (s *Store) list() ([]Quote, error) {
	files, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	quotes := make([]Quote, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		q, err := s.read(id)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Position == quotes[j].Position {
			return quotes[i].ID < quotes[j].ID
		}
		return quotes[i].Position < quotes[j].Position
	})

	return quotes, nil
}

// Delete 移除指定标识符的引言。
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validID.MatchString(id) {
		return ErrQuoteNotFound
	}
	if err := os.Remove(s.quotePath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

func (s *Store) quotePath(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *Store) persist(q Quote) error {
	path := s.quotePath(q.ID)
	tmpPath := path + ".tmp"

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&q); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) read(id string) (Quote, error) {
	if !validID.MatchString(id) {
		return Quote{}, ErrQuoteNotFound
	}

	file, err := os.Open(s.quotePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Quote{}, ErrQuoteNotFound
		}
		return Quote{}, fmt.Errorf("open quote: %w", err)
	}
	defer file.Close()

	var q Quote
	if err := json.NewDecoder(file).Decode(&q); err != nil {
		return Quote{}, fmt.Errorf("decode quote %s: %w", id, err)
	}
	q.ID = id
	return q, nil
}
