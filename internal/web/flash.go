package web

import (
	"net/http"
	"net/url"
	"strings"
)

const flashCookieName = "propdesk_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// setFlash stores a one-shot category|message pair in a cookie. The next page
// load consumes it.
func setFlash(w http.ResponseWriter, category, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie. Returns empty strings when none
// is set.
func popFlash(w http.ResponseWriter, r *http.Request) (category, message string) {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", ""
	}
	category, message, ok := strings.Cut(raw, "|")
	if !ok {
		return "", raw
	}
	return category, message
}

// redirectFlash sets a flash message and redirects with 303 so the browser
// re-requests with GET.
func (s *Server) redirectFlash(w http.ResponseWriter, r *http.Request, target, category, message string) {
	setFlash(w, category, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
