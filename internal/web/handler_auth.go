package web

import (
	"errors"
	"net/http"

	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/metrics"
)

type loginPageResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	FlashCategory string `json:"flash_category,omitempty"`
	FlashMessage  string `json:"flash_message,omitempty"`
}

// handleLoginPage reports the current authentication state and any pending
// flash message.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	resp := loginPageResponse{}
	resp.FlashCategory, resp.FlashMessage = popFlash(w, r)

	if c, err := r.Cookie(sessionCookieName); err == nil {
		if u, err := s.auth.ValidateToken(r.Context(), c.Value); err == nil {
			resp.Authenticated = true
			resp.Username = u.Username
		}
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.allow(clientIP(r)) {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many login attempts", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token, err := s.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			s.redirectFlash(w, r, "/login", flashError, "Invalid username or password")
			return
		}
		s.serverError(w, r, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.redirectFlash(w, r, "/", flashSuccess, "Logged in successfully!")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.auth.Logout(r.Context(), c.Value); err != nil {
			s.logger.Warn("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.redirectFlash(w, r, "/login", flashInfo, "You have been logged out.")
}
