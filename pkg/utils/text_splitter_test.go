package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestSplitTextPrefersParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := SplitText(text, 100, 10)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Errorf("first chunk should end at the paragraph break, got %q", chunks[0][len(chunks[0])-5:])
	}
}

func TestSplitTextChunksRespectSizeLimit(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := SplitText(text, 200, 50)

	for i, chunk := range chunks {
		if len([]rune(chunk)) > 200 {
			t.Errorf("chunk %d exceeds limit: %d runes", i, len([]rune(chunk)))
		}
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("sentence one. ", 100)
	chunks := SplitText(text, 150, 30)

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk should be a suffix of the input")
	}
	if !strings.Contains(last, "sentence one.") {
		t.Error("last chunk should contain the tail content")
	}
}

func TestSplitTextOverlapAtLeastChunkSizeStillAdvances(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := SplitText(text, 100, 100)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	// With no usable boundary in solid text the window advances by a full
	// chunk, so coverage must still terminate.
	if len(chunks) > 10 {
		t.Fatalf("splitter did not advance, produced %d chunks", len(chunks))
	}
}
