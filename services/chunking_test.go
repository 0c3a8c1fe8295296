package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200, 100)

	chunks := c.Chunk("A short paragraph about dental coverage.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short paragraph about dental coverage." {
		t.Errorf("chunk altered the text: %q", chunks[0])
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(1000, 200, 100)

	if chunks := c.Chunk("   \n\n  "); len(chunks) != 0 {
		t.Fatalf("whitespace-only text should produce no chunks, got %v", chunks)
	}
}

func TestChunkSplitsAtParagraphs(t *testing.T) {
	c := NewChunker(120, 0, 40)

	para := strings.Repeat("word ", 20) // ~100 chars
	text := para + "\n\n" + para + "\n\n" + para

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 2*c.maxChunkSize {
			t.Errorf("chunk %d far exceeds the size limit: %d chars", i, len(chunk))
		}
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	c := NewChunker(100, 30, 20)

	text := strings.Repeat("alpha bravo charlie delta echo. ", 4) +
		"\n\n" + strings.Repeat("foxtrot golf hotel india juliet. ", 4)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each later chunk starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > c.overlap {
			head = head[:c.overlap]
		}
		firstWord := strings.Fields(head)[0]
		if !strings.Contains(chunks[i-1], firstWord) {
			t.Errorf("chunk %d does not overlap its predecessor: starts %q", i, firstWord)
		}
	}
}

func TestSplitOversizedBreaksAtSentences(t *testing.T) {
	c := NewChunker(50, 0, 20)

	paragraph := "First sentence here. Second sentence follows. Third one too. Fourth closes it."
	pieces := c.splitOversized(paragraph)
	if len(pieces) < 2 {
		t.Fatalf("oversized paragraph should split, got %d pieces", len(pieces))
	}
	for _, p := range pieces {
		if len(p) > c.maxChunkSize {
			t.Errorf("piece over the limit: %q", p)
		}
	}
}

func TestChunkSizesCountRunesNotBytes(t *testing.T) {
	c := NewChunker(120, 0, 20)

	// ~95 runes of Hebrew, roughly double that in bytes. Counted in runes it
	// fits a single chunk.
	paragraph := strings.TrimSpace(strings.Repeat("זהו משפט בעברית לבדיקה. ", 4))
	if utf8.RuneCountInString(paragraph) > c.maxChunkSize {
		t.Fatalf("test text exceeds the chunk size: %d runes", utf8.RuneCountInString(paragraph))
	}

	chunks := c.Chunk(paragraph)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for Hebrew text under the limit, got %d", len(chunks))
	}
	if chunks[0] != paragraph {
		t.Errorf("chunk altered the text: %q", chunks[0])
	}
}

func TestOverlapTailHebrewRuneBoundary(t *testing.T) {
	tail := overlapTail("הנחה לטיפולים פסיכולוגיים", 8)
	if !utf8.ValidString(tail) {
		t.Fatalf("overlap tail is not valid UTF-8: %q", tail)
	}
	if utf8.RuneCountInString(tail) > 8 {
		t.Errorf("tail longer than requested: %q", tail)
	}
}

func TestOverlapTailWordBoundary(t *testing.T) {
	tail := overlapTail("coverage applies to gold members only", 12)
	if strings.HasPrefix(tail, "embers") {
		t.Errorf("overlap starts mid-word: %q", tail)
	}
	if tail == "" {
		t.Error("overlap tail should not be empty")
	}
}
