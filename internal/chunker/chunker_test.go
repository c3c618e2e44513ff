package chunker

import (
	"strings"
	"testing"
)

// reassemble joins chunks back together, dropping each later chunk's overlap
// prefix. This must reproduce the original input exactly.
func reassemble(chunks []string, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		runes := []rune(c)
		sb.WriteString(string(runes[overlap:]))
	}
	return sb.String()
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 100)
	chunks := s.Split("a short document")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Fatalf("chunk should equal input, got %q", chunks[0])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s := NewSplitter(1000, 100)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_HardCutCount(t *testing.T) {
	// 3000 runes without any natural boundary, size 1000, overlap 100:
	// windows [0,1000) [900,1900) [1800,2800) [2700,3000) = 4 chunks.
	text := strings.Repeat("a", 3000)
	s := NewSplitter(1000, 100)
	chunks := s.Split(text)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 1000 {
			t.Fatalf("chunk %d exceeds max length: %d", i, n)
		}
	}
	if got := reassemble(chunks, 100); got != text {
		t.Fatalf("reassembled text does not match input")
	}
}

func TestSplit_MaxLengthAndReconstruction(t *testing.T) {
	inputs := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 120),
		strings.Repeat("paragraph one\n\nparagraph two\n\n", 80),
		strings.Repeat("line\n", 700),
		strings.Repeat("x", 999),
		strings.Repeat("x", 1001),
	}

	s := NewSplitter(1000, 100)
	for _, text := range inputs {
		chunks := s.Split(text)
		if len(chunks) == 0 {
			t.Fatalf("expected chunks for non-empty input")
		}
		for i, c := range chunks {
			if n := len([]rune(c)); n > s.Size {
				t.Fatalf("chunk %d exceeds max length: %d > %d", i, n, s.Size)
			}
			if c == "" {
				t.Fatalf("chunk %d is empty", i)
			}
		}
		if got := reassemble(chunks, s.Overlap); got != text {
			t.Fatalf("reassembled text does not match input (len %d vs %d)", len(got), len(text))
		}
	}
}

func TestSplit_OverlapIsExact(t *testing.T) {
	text := strings.Repeat("Sentence ends here. ", 200)
	s := NewSplitter(500, 50)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		tail := string(prev[len(prev)-s.Overlap:])
		head := string(cur[:s.Overlap])
		if tail != head {
			t.Fatalf("chunk %d overlap mismatch: tail %q vs head %q", i, tail, head)
		}
	}
}

func TestSplit_PrefersNaturalBoundary(t *testing.T) {
	// A paragraph break sits in the back half of the first window; the first
	// chunk should end right after it instead of at the hard cut.
	text := strings.Repeat("a", 700) + "\n\n" + strings.Repeat("b", 600)
	s := NewSplitter(1000, 100)
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Fatalf("first chunk should end at the paragraph break, got tail %q", chunks[0][len(chunks[0])-5:])
	}
	if got := reassemble(chunks, s.Overlap); got != text {
		t.Fatalf("reassembled text does not match input")
	}
}

func TestNewSplitter_ClampsBadValues(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.Size != DefaultSize || s.Overlap != 0 {
		t.Fatalf("unexpected clamped splitter: %+v", s)
	}

	s = NewSplitter(100, 100)
	if s.Overlap != 50 {
		t.Fatalf("overlap should clamp to half size, got %d", s.Overlap)
	}
}
