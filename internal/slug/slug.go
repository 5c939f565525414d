package slug

import (
	"regexp"
	"strings"
)

// MaxIDLength 是由文本生成的标识符的最大长度。
const MaxIDLength = 25

// 按表顺序逐字符替换，重音字母折叠为 ASCII，部分标点折叠为连字符。
var foldReplacer = newFoldReplacer(
	"àáäâèéëêìíïîòóöôùúüûñç·/_,:;",
	"aaaaeeeeiiiioooouuuunc------",
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9 -]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashes       = regexp.MustCompile(`-+`)
)

func newFoldReplacer(from, to string) *strings.Replacer {
	src := []rune(from)
	dst := []rune(to)
	if len(src) != len(dst) {
		panic("slug: fold table length mismatch")
	}
	pairs := make([]string, 0, len(src)*2)
	for i := range src {
		pairs = append(pairs, string(src[i]), string(dst[i]))
	}
	return strings.NewReplacer(pairs...)
}

// Slugify 将任意文本转换为只包含 [a-z0-9-] 的标识符，首尾不含连字符。
func Slugify(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ToLower(s)
	s = foldReplacer.Replace(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate 截取前 max 个字符，并去掉末尾的一个连字符。
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	runes := []rune(s)
	if len(runes) > max {
		s = string(runes[:max])
	}
	return strings.TrimSuffix(s, "-")
}

// FromText 返回文本对应的标识符，即 Truncate(Slugify(text), MaxIDLength)。
func FromText(text string) string {
	return Truncate(Slugify(text), MaxIDLength)
}

// Item 是可以被分配标识符的条目。
type Item interface {
	SourceText() string
	Identifier() string
	SetIdentifier(id string)
}

// AssignIdentifiers 为每个尚无标识符的条目生成标识符，已有标识符的条目保持不变。
// 文本无法生成任何字符时不做赋值，由调用方决定兜底方案。
func AssignIdentifiers[T Item](items []T) {
	for _, item := range items {
		if item.Identifier() != "" {
			continue
		}
		if id := FromText(item.SourceText()); id != "" {
			item.SetIdentifier(id)
		}
	}
}
