package content

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	md     = goldmark.New()
	policy = bluemonday.UGCPolicy()
)

// RenderHTML 将引言文本按 Markdown 渲染并清洗成安全的 HTML。
func RenderHTML(q Quote) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(q.Text), &buf); err != nil {
		return "", err
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}
