// Package jobdesc turns uploaded files, pasted text and posting URLs into a
// job description document.
package jobdesc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Content types
const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
)

// ErrEmpty is returned when a job description has no usable content.
var ErrEmpty = errors.New("job description is empty")

// Document is a job description ready for the ATS service and the LLM.
// PDFs keep their bytes and leave Text empty.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
	Text        string
}

// IsPDF reports whether the document is a PDF passed through unparsed.
func (d *Document) IsPDF() bool {
	return d.ContentType == ContentTypePDF
}

// Error describes a rejected upload or a failed fetch.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job description %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("job description %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FromText builds a plain-text document from pasted text.
func FromText(text string) (*Document, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, ErrEmpty
	}
	return textDocument("job_description.txt", cleaned), nil
}

// FromUpload builds a document from an uploaded file. Text, Markdown, HTML
// and PDF files are accepted.
func FromUpload(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md":
		cleaned := CleanText(string(data))
		if cleaned == "" {
			return nil, ErrEmpty
		}
		return textDocument(name, cleaned), nil
	case ".html", ".htm":
		text, err := ExtractText(string(data))
		if err != nil {
			return nil, &Error{Source: name, Message: "failed to parse HTML", Cause: err}
		}
		if text == "" {
			return nil, ErrEmpty
		}
		return textDocument(strings.TrimSuffix(name, filepath.Ext(name))+".txt", text), nil
	case ".pdf":
		if !strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF") {
			return nil, &Error{Source: name, Message: "file is not a PDF"}
		}
		return &Document{Name: name, ContentType: ContentTypePDF, Data: data}, nil
	default:
		return nil, &Error{Source: name, Message: fmt.Sprintf("unsupported file type %q, provide .txt, .html or .pdf", ext)}
	}
}

func textDocument(name, text string) *Document {
	return &Document{Name: name, ContentType: ContentTypeText, Data: []byte(text), Text: text}
}
