package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreCreateAndGet(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	quote, err := store.Create("  Ñandú, piensa así: ¡vale!  ", "Anónimo")
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if quote.ID != "nandu-piensa-asi-vale" {
		t.Fatalf("expected id derived from text, got %q", quote.ID)
	}

	path := filepath.Join(root, quote.ID+".json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	loaded, err := store.Get(quote.ID)
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}

	if loaded.Text != "Ñandú, piensa así: ¡vale!" {
		t.Fatalf("expected text to be trimmed and persisted, got %q", loaded.Text)
	}
	if loaded.Author != "Anónimo" {
		t.Fatalf("expected author to persist")
	}
}

func TestStoreCreateRejectsEmptyText(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Create("   ", "nobody"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestStoreCreateIDCollisions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	text := "Whatever you are, be a good one and never give up"
	first, err := store.Create(text, "A")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := store.Create(text+" again", "B")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if first.ID != "whatever-you-are-be-a-goo" {
		t.Fatalf("unexpected first id %q", first.ID)
	}
	if second.ID == first.ID {
		t.Fatalf("expected distinct ids, both %q", first.ID)
	}
	if !strings.HasSuffix(second.ID, "-2") || len(second.ID) > 25 {
		t.Fatalf("expected suffixed id within 25 chars, got %q", second.ID)
	}
}

func TestStoreCreateFallbackAndReservedIDs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	symbols, err := store.Create("¡¿!?", "Nobody")
	if err != nil {
		t.Fatalf("create symbols: %v", err)
	}
	if symbols.ID != "quote-1" {
		t.Fatalf("expected positional fallback id, got %q", symbols.ID)
	}

	admin, err := store.Create("Admin", "Somebody")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if admin.ID != "admin-2" {
		t.Fatalf("expected reserved id to be suffixed, got %q", admin.ID)
	}
}

func TestStoreUpdate(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	quote, err := store.Create("initial text", "first")
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	updated, err := store.Update(quote.ID, "Updated text", "second")
	if err != nil {
		t.Fatalf("update quote: %v", err)
	}

	if updated.ID != quote.ID {
		t.Fatalf("expected id to stay stable, got %q", updated.ID)
	}
	if updated.Text != "Updated text" {
		t.Fatalf("expected text to update")
	}
	if updated.Author != "second" {
		t.Fatalf("expected author to update")
	}
	if updated.Position != quote.Position {
		t.Fatalf("expected position to stay stable")
	}
}

func TestStoreList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	texts := []string{"Zebra quote", "Apple quote", "Middle quote"}
	for _, text := range texts {
		if _, err := store.Create(text, "someone"); err != nil {
			t.Fatalf("create %q: %v", text, err)
		}
	}

	quotes, err := store.List()
	if err != nil {
		t.Fatalf("list quotes: %v", err)
	}

	if len(quotes) != len(texts) {
		t.Fatalf("expected %d quotes, got %d", len(texts), len(quotes))
	}
	for i, q := range quotes {
		if q.Text != texts[i] {
			t.Fatalf("expected creation order, got %q at %d", q.Text, i)
		}
		if q.Position != i {
			t.Fatalf("expected position %d, got %d", i, q.Position)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	quote, err := store.Create("hello", "desc")
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if err := store.Delete(quote.ID); err != nil {
		t.Fatalf("delete quote: %v", err)
	}

	if _, err := store.Get(quote.ID); !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("expected get to return ErrQuoteNotFound, got %v", err)
	}
	if err := store.Delete(quote.ID); !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("expected second delete to return ErrQuoteNotFound, got %v", err)
	}
}

func TestStoreGetRejectsInvalidIDs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, id := range []string{"", "..", "../etc/passwd", "UPPER"} {
		if _, err := store.Get(id); !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound for %q, got %v", id, err)
		}
	}
}

func TestStoreImport(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "content"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	seed := filepath.Join(dir, "quotes.yaml")
	data := `quotes:
  - text: "Less is more."
    author: Ludwig Mies van der Rohe
  - id: simplicity
    text: "Simplicity is the ultimate sophistication."
    author: Leonardo da Vinci
  - text: "   "
    author: Nobody
`
	if err := os.WriteFile(seed, []byte(data), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := store.Import(seed)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported quotes, got %d", n)
	}

	if _, err := store.Get("less-is-more"); err != nil {
		t.Fatalf("expected slug id for first quote: %v", err)
	}
	if _, err := store.Get("simplicity"); err != nil {
		t.Fatalf("expected explicit id to be kept: %v", err)
	}

	again, err := store.Import(seed)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected repeated import to be a no-op, got %d", again)
	}
}

func TestStoreImportInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "content"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	seed := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(seed, []byte("quotes: [unterminated"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := store.Import(seed); err == nil {
		t.Fatalf("expected parse error")
	}
}
