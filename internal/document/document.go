// Package document turns uploaded resume bytes into plain text.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// Kind is a supported document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindTXT  Kind = "txt"
)

const docxBody = "word/document.xml"

// DocumentFormatError reports bytes that cannot be decoded as the declared kind.
type DocumentFormatError struct {
	Kind  Kind
	Cause error
}

func (e *DocumentFormatError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("unreadable %s document", e.Kind)
	}
	return fmt.Sprintf("unreadable %s document: %v", e.Kind, e.Cause)
}

func (e *DocumentFormatError) Unwrap() error {
	return e.Cause
}

var errNoText = errors.New("no text found")

// ParseKind accepts a bare kind ("pdf"), an extension (".pdf") or a file name.
func ParseKind(raw string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if ext := filepath.Ext(name); ext != "" {
		name = ext
	}
	name = strings.TrimPrefix(name, ".")

	switch name {
	case "pdf":
		return KindPDF, nil
	case "docx":
		return KindDOCX, nil
	case "txt", "text", "md":
		return KindTXT, nil
	}
	return "", fmt.Errorf("unsupported document kind %q", raw)
}

// ExtractText decodes data according to kind.
// Every decoding failure is a *DocumentFormatError.
func ExtractText(data []byte, kind Kind) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", &DocumentFormatError{Kind: kind, Cause: errors.New("empty document")}
	}

	var (
		text string
		err  error
	)

	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindDOCX:
		text, err = docxText(data)
	case KindTXT:
		text = strings.ToValidUTF8(string(data), "�")
	default:
		err = fmt.Errorf("unsupported kind %q", kind)
	}

	if err != nil {
		return "", &DocumentFormatError{Kind: kind, Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &DocumentFormatError{Kind: kind, Cause: errNoText}
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var builder strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		builder.WriteString(page)
		builder.WriteString("\n\n")
	}

	return builder.String(), nil
}

func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != docxBody {
			continue
		}
		body, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer body.Close()
		return wordprocessingText(body)
	}

	return "", fmt.Errorf("%s not found", docxBody)
}

// wordprocessingText collects w:t runs, breaking lines at paragraphs and table cells.
func wordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		builder strings.Builder
		inText  bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", docxBody, err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				builder.WriteByte('\t')
			case "br", "cr":
				builder.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p", "tc":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText && utf8.Valid(el) {
				builder.Write(el)
			}
		}
	}

	return builder.String(), nil
}
