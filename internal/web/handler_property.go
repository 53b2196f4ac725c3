package web

import (
	"errors"
	"net/http"

	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/service"
)

type listPropertiesResponse struct {
	Properties    []*service.PropertySummary `json:"properties"`
	Username      string                     `json:"username"`
	FlashCategory string                     `json:"flash_category,omitempty"`
	FlashMessage  string                     `json:"flash_message,omitempty"`
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.props.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	resp := listPropertiesResponse{Properties: summaries, Username: userFrom(r).Username}
	resp.FlashCategory, resp.FlashMessage = popFlash(w, r)
	s.respondJSON(w, http.StatusOK, resp)
}

type propertyDetailResponse struct {
	*service.PropertyDetail
	FlashCategory string `json:"flash_category,omitempty"`
	FlashMessage  string `json:"flash_message,omitempty"`
}

func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	detail, err := s.props.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	resp := propertyDetailResponse{PropertyDetail: detail}
	resp.FlashCategory, resp.FlashMessage = popFlash(w, r)
	s.respondJSON(w, http.StatusOK, resp)
}

// parseUploadForm reads a form that may or may not be multipart, bounded by
// the configured upload limit.
func (s *Server) parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return r.ParseForm()
		}
		return err
	}
	return nil
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUploadForm(w, r); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}

	fields, err := propertyFieldsFromForm(r)
	if err != nil {
		s.redirectFlash(w, r, "/", flashError, err.Error())
		return
	}

	maps := service.MapsLinkFields{
		GoogleMapsLink: r.FormValue("google_maps_link"),
		Latitude:       r.FormValue("latitude"),
		Longitude:      r.FormValue("longitude"),
	}

	var uploads []service.Upload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["documents"] {
			f, err := fh.Open()
			if err != nil {
				s.serverError(w, r, err)
				return
			}
			defer f.Close()
			uploads = append(uploads, service.Upload{Filename: fh.Filename, Content: f})
		}
	}

	if _, err := s.props.Create(r.Context(), fields, maps, uploads); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.redirectFlash(w, r, "/", flashSuccess, "Property added successfully!")
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	fields, err := propertyFieldsFromForm(r)
	if err != nil {
		s.redirectFlash(w, r, propertyPath(id), flashError, err.Error())
		return
	}

	if err := s.props.Update(r.Context(), id, fields); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectFlash(w, r, propertyPath(id), flashSuccess, "Property updated successfully!")
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.props.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectFlash(w, r, "/", flashSuccess, "Property deleted successfully!")
}
