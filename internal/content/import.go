package content

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Quotes []seedQuote `yaml:"quotes"`
}

type seedQuote struct {
	ID     string `yaml:"id"`
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

// Import 从 YAML 文件导入引言，返回新增的数量。
// 文本与作者都相同的引言视为已存在，会被跳过，因此可以在每次启动时重复导入。
func (s *Store) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.list()
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, q := range existing {
		known[seedKey(q.Text, q.Author)] = true
	}

	imported := 0
	for i, sq := range seed.Quotes {
		key := seedKey(sq.Text, sq.Author)
		if strings.TrimSpace(sq.Text) == "" || known[key] {
			continue
		}
		if _, err := s.create(Quote{ID: sq.ID, Text: sq.Text, Author: sq.Author}); err != nil {
			return imported, fmt.Errorf("import quote %d: %w", i+1, err)
		}
		known[key] = true
		imported++
	}
	return imported, nil
}

func seedKey(text, author string) string {
	return strings.TrimSpace(text) + "\x00" + strings.TrimSpace(author)
}
