package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
)

// Multipart form fields
const (
	fieldResumeFile    = "resumeFile"
	fieldJDFile        = "jobDescriptionFile"
	fieldJDText        = "jobDescriptionText"
	fieldJDURL         = "jobDescriptionUrl"
	multipartMemoryCap = 32 << 20
)

// upload is a file read from a multipart form.
type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// parseMultipart bounds the body by the upload limit and parses the form.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadBytes>>20))
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, "expected multipart/form-data body")
		return false
	}
	return true
}

// formFile reads an optional uploaded file. A missing field returns nil.
func formFile(r *http.Request, field string) (*upload, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, &ErrValidation{Field: field, Message: "unreadable file"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return &upload{
		Name:        filepath.Base(hdr.Filename),
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// resumePDF reads the required resume upload and checks it is a PDF.
func resumePDF(r *http.Request) (*upload, error) {
	u, err := formFile(r, fieldResumeFile)
	if err != nil {
		return nil, err
	}
	if u == nil || len(u.Data) == 0 {
		return nil, &ErrValidation{Field: fieldResumeFile, Message: "resume PDF is required"}
	}
	if !bytes.HasPrefix(u.Data, []byte("%PDF")) {
		return nil, &ErrValidation{Field: fieldResumeFile, Message: "resume must be a PDF file"}
	}
	u.ContentType = jobdesc.ContentTypePDF
	return u, nil
}

// jobDescription reads exactly one of the job description file, pasted
// text or posting URL.
func (s *Server) jobDescription(ctx context.Context, r *http.Request) (*jobdesc.Document, error) {
	file, err := formFile(r, fieldJDFile)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(r.FormValue(fieldJDText))
	pageURL := strings.TrimSpace(r.FormValue(fieldJDURL))

	given := 0
	for _, set := range []bool{file != nil, text != "", pageURL != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, &ErrValidation{
			Field:   "jobDescription",
			Message: "provide exactly one of jobDescriptionFile, jobDescriptionText or jobDescriptionUrl",
		}
	}

	switch {
	case file != nil:
		return jobdesc.FromUpload(file.Name, file.Data)
	case text != "":
		return jobdesc.FromText(text)
	default:
		if s.deps.Fetcher == nil {
			return nil, &ErrValidation{Field: fieldJDURL, Message: "fetching job descriptions by URL is disabled"}
		}
		return s.deps.Fetcher.FromURL(ctx, pageURL)
	}
}

func atsFile(doc *jobdesc.Document) ats.File {
	return ats.File{Name: doc.Name, Data: doc.Data}
}

func formString(r *http.Request, field string) string {
	return strings.TrimSpace(r.FormValue(field))
}
