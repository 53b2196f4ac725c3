package web

import (
	"errors"
	"net/http"

	"github.com/propdesk/propdesk/internal/domain"
)

func (s *Server) handleAddMapsLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	_, err = s.props.AddMapsLink(r.Context(), id,
		r.FormValue("link_title"),
		r.FormValue("google_maps_link"),
		r.FormValue("latitude"),
		r.FormValue("longitude"),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			s.redirectFlash(w, r, propertyPath(id), flashError, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.redirectFlash(w, r, propertyPath(id), flashSuccess, "Maps link added successfully!")
}

func (s *Server) handleDeleteMapsLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	propertyID, err := s.props.DeleteMapsLink(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectFlash(w, r, propertyPath(propertyID), flashSuccess, "Maps link deleted successfully!")
}
