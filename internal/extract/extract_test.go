package extract

import (
	"errors"
	"testing"
)

func TestText_TXT(t *testing.T) {
	text, err := Text([]byte("hello document\nsecond line"), ".txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello document\nsecond line" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestText_TXTInvalidUTF8(t *testing.T) {
	_, err := Text([]byte{0xff, 0xfe, 0xfd}, ".txt")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestText_EmptyTXT(t *testing.T) {
	_, err := Text([]byte("   \n  "), ".txt")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed for whitespace-only text, got %v", err)
	}
}

func TestText_UnsupportedExtension(t *testing.T) {
	for _, ext := range []string{".exe", ".png", ".md", "", "pdf", ".PDF"} {
		_, err := Text([]byte("payload"), ext)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("ext %q: expected ErrUnsupportedType, got %v", ext, err)
		}
	}
}

func TestText_CorruptPDF(t *testing.T) {
	_, err := Text([]byte("not really a pdf"), ".pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestText_CorruptDOCX(t *testing.T) {
	_, err := Text([]byte("not really a docx"), ".docx")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".txt", ".pdf", ".docx"} {
		if !Supported(ext) {
			t.Fatalf("expected %q to be supported", ext)
		}
	}
	if Supported(".exe") {
		t.Fatalf(".exe must not be supported")
	}
}
