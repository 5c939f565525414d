package content

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder 表示页面的排序方式。
type SortOrder string

const (
	SortNone     SortOrder = ""
	SortAphorism SortOrder = "aphorism"
	SortAuthor   SortOrder = "author"
)

// ParseSortOrder 解析查询参数，无法识别时返回 SortNone。
func ParseSortOrder(v string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(v))) {
	case SortAphorism:
		return SortAphorism
	case SortAuthor:
		return SortAuthor
	default:
		return SortNone
	}
}

// Toggle 返回切换后的排序方式：按引言排序后切到按作者，反之亦然。
// 未排序的页面第一次切换按作者排序。
func (o SortOrder) Toggle() SortOrder {
	if o == SortAuthor {
		return SortAphorism
	}
	return SortAuthor
}

// Label 返回切换按钮上显示的文字。
func (o SortOrder) Label() string {
	if o == SortAuthor {
		return "sort by aphorism"
	}
	return "sort by author"
}

// Sort 返回按指定方式排序后的副本，比较使用与语言无关的排序规则。
// SortNone 保持原有顺序。
func Sort(quotes []Quote, order SortOrder) []Quote {
	sorted := slices.Clone(quotes)
	if order == SortNone {
		return sorted
	}

	key := func(q Quote) string { return strings.TrimSpace(q.Text) }
	if order == SortAuthor {
		key = func(q Quote) string { return strings.TrimSpace(q.Author) }
	}

	c := collate.New(language.Und)
	slices.SortStableFunc(sorted, func(a, b Quote) int {
		return c.CompareString(key(a), key(b))
	})
	return sorted
}
