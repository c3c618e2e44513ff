package chunker

const (
	DefaultSize    = 1000
	DefaultOverlap = 100
)

// Splitter cuts text into overlapping chunks of at most Size runes. Every
// chunk is an exact substring of the input; chunk i+1 starts exactly Overlap
// runes before chunk i ends, so the input is reconstructed by joining
// chunks[0] with each later chunk minus its Overlap-rune prefix.
type Splitter struct {
	Size    int
	Overlap int
}

func NewSplitter(size, overlap int) Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return Splitter{Size: size, Overlap: overlap}
}

// Split returns the ordered chunks of text. Text no longer than Size runes
// yields exactly one chunk; empty text yields none.
func (s Splitter) Split(text string) []string {
	size := s.Size
	if size <= 0 {
		size = DefaultSize
	}
	overlap := s.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		if cut := boundaryCut(runes, start, end, overlap); cut > 0 {
			end = cut
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}
	return chunks
}

// boundaryCut looks for a natural split point inside (start, end], preferring
// a paragraph break, then a newline, then a sentence end. Only the back half
// of the window is searched so chunks never collapse below half size, and the
// cut must leave room for the next chunk to advance past the overlap.
func boundaryCut(runes []rune, start, end, overlap int) int {
	min := start + (end-start)/2
	if floor := start + overlap + 1; min < floor {
		min = floor
	}
	if min >= end {
		return 0
	}

	// Paragraph break: cut after the blank line.
	for i := end - 1; i > min; i-- {
		if runes[i-1] == '\n' && runes[i] == '\n' {
			return i + 1
		}
	}
	// Single newline.
	for i := end - 1; i >= min; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by whitespace.
	for i := end - 2; i >= min; i-- {
		if isSentenceEnd(runes[i]) && isSpace(runes[i+1]) {
			return i + 2
		}
	}
	return 0
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
