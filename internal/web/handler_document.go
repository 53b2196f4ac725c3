package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/service"
)

func propertyPath(id int64) string {
	return fmt.Sprintf("/property/%d", id)
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.parseUploadForm(w, r); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}

	up := service.Upload{}
	if f, fh, err := r.FormFile("document"); err == nil {
		defer f.Close()
		up = service.Upload{Filename: fh.Filename, Content: f}
	}

	_, err = s.props.AddDocument(r.Context(), id, up, r.FormValue("document_type"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoFile):
			s.redirectFlash(w, r, propertyPath(id), flashError, "No file selected")
		case errors.Is(err, domain.ErrFileType):
			s.redirectFlash(w, r, propertyPath(id), flashError, "File type not allowed")
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.redirectFlash(w, r, propertyPath(id), flashSuccess, "Document uploaded successfully!")
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	propertyID, err := s.props.DeleteDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectFlash(w, r, propertyPath(propertyID), flashSuccess, "Document deleted successfully!")
}

// handleDownload streams a stored file back under its stored name. The file
// store rejects path traversal, so the raw path segment is safe to pass along.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	f, err := s.files.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("failed to stream file", "filename", filename, "error", err)
	}
}
