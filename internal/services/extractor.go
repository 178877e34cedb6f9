package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF         = "application/pdf"
	MimeDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC         = "application/msword"
	MimeOctetStream = "application/octet-stream"
)

type TextExtractor interface {
	// Extract converts a PDF or Word document into normalized text.
	Extract(data []byte, mimeType string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(data []byte, mimeType string) (string, error) {
	mt := normalizeMime(mimeType)

	var (
		text string
		err  error
	)

	switch {
	case IsPDF(mt):
		text, err = extractPDF(data)
	case IsWordFamily(mt):
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	normalized := NormalizeText(text)
	if normalized == "" {
		return "", fmt.Errorf("%w: no text content found", ErrExtractionFailure)
	}

	return normalized, nil
}

func IsPDF(mimeType string) bool {
	return normalizeMime(mimeType) == MimePDF
}

// IsWordFamily accepts .docx, legacy .doc and anything a browser labels as Word.
func IsWordFamily(mimeType string) bool {
	mt := normalizeMime(mimeType)
	return strings.Contains(mt, "word") || mt == MimeDOC || mt == "application/doc"
}

// ResolveMimeType picks the declared type when it is meaningful, then the file
// extension, then content sniffing.
func ResolveMimeType(declared, filename string, data []byte) string {
	if mt := normalizeMime(declared); mt != "" && mt != MimeOctetStream {
		return mt
	}

	if guess := GuessMimeFromName(filename); guess != MimeOctetStream {
		return guess
	}

	if len(data) > 0 {
		return normalizeMime(mimetype.Detect(data).String())
	}

	return MimeOctetStream
}

func GuessMimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".doc":
		return MimeDOC
	default:
		return MimeOctetStream
	}
}

// NormalizeText strips carriage returns, trims every line and drops blank ones.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")

	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleanedLines, "\n"))
}

func normalizeMime(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document body: %w", err)
		}
		defer rc.Close()

		return docxBodyText(rc)
	}

	return "", fmt.Errorf("document body not found")
}

// docxBodyText walks WordprocessingML and emits one line per paragraph.
func docxBodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		sb     strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
