package content

import (
	"strings"
	"testing"
)

func texts(quotes []Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Text
	}
	return out
}

func TestSort(t *testing.T) {
	quotes := []Quote{
		{Text: "Zeal without knowledge", Author: "Proverb"},
		{Text: "école de la vie", Author: "Anonyme"},
		{Text: "Apples and oranges", Author: "Zeno"},
		{Text: " Éclat", Author: "Émile"},
	}

	tests := []struct {
		name     string
		order    SortOrder
		expected []string
	}{
		{
			name:     "no sort keeps page order",
			order:    SortNone,
			expected: []string{"Zeal without knowledge", "école de la vie", "Apples and oranges", " Éclat"},
		},
		{
			name:     "by aphorism ignores accents and case",
			order:    SortAphorism,
			expected: []string{"Apples and oranges", " Éclat", "école de la vie", "Zeal without knowledge"},
		},
		{
			name:     "by author",
			order:    SortAuthor,
			expected: []string{"école de la vie", " Éclat", "Zeal without knowledge", "Apples and oranges"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Sort(quotes, tt.order))
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	if quotes[0].Text != "Zeal without knowledge" {
		t.Fatalf("Sort must not modify its input")
	}
}

func TestSortOrderToggle(t *testing.T) {
	tests := []struct {
		order  SortOrder
		next   SortOrder
		label  string
		parsed string
	}{
		{order: SortNone, next: SortAuthor, label: "sort by author", parsed: ""},
		{order: SortAphorism, next: SortAuthor, label: "sort by author", parsed: "aphorism"},
		{order: SortAuthor, next: SortAphorism, label: "sort by aphorism", parsed: " Author "},
	}

	for _, tt := range tests {
		if got := tt.order.Toggle(); got != tt.next {
			t.Errorf("%q.Toggle() = %q, want %q", tt.order, got, tt.next)
		}
		if got := tt.order.Label(); got != tt.label {
			t.Errorf("%q.Label() = %q, want %q", tt.order, got, tt.label)
		}
		if got := ParseSortOrder(tt.parsed); got != tt.order {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", tt.parsed, got, tt.order)
		}
	}

	if got := ParseSortOrder("random"); got != SortNone {
		t.Errorf("expected unknown order to parse as none, got %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(Quote{Text: "Be *bold* <script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<em>bold</em>") {
		t.Fatalf("expected markdown emphasis, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be removed, got %q", out)
	}
}
