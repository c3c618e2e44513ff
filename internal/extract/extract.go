package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedType is returned before any parse work when the
	// extension is not one of the supported set.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtractionFailed wraps all parse failures: corrupt files, bad
	// encodings, documents with no extractable text.
	ErrExtractionFailed = errors.New("text extraction failed")
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var supported = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// Supported reports whether ext (lowercase, with leading dot) is extractable.
func Supported(ext string) bool {
	return supported[ext]
}

// Text extracts plain text from raw file bytes, dispatching on the file
// extension. No partial text is ever returned: any failure surfaces as
// ErrExtractionFailed.
func Text(data []byte, ext string) (string, error) {
	if !Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	var text string
	var err error
	switch ext {
	case ".txt":
		text, err = fromTXT(data)
	case ".pdf":
		text, err = fromPDF(data)
	case ".docx":
		text, err = fromDOCX(data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrExtractionFailed)
	}
	return text, nil
}

func fromTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid utf-8")
	}
	return string(data), nil
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %v", err)
	}

	var sb strings.Builder
	totalPages := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %v", pageIndex, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func fromDOCX(data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), docxMimeType, false)
	if err != nil {
		return "", fmt.Errorf("convert docx: %v", err)
	}
	return res.Body, nil
}
