package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/propdesk/internal/config"
	"github.com/propdesk/propdesk/internal/db"
	"github.com/propdesk/propdesk/internal/filestore/local"
	"github.com/propdesk/propdesk/internal/service"
	"github.com/propdesk/propdesk/internal/store"
	"github.com/propdesk/propdesk/internal/web"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	sqlDB, err := db.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db.EnsureAdmin(sqlDB, "admin", "admin123", logger)

	files, err := local.NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	cfg := &config.Config{
		MaxUploadSize:     16 << 20,
		AllowedExtensions: []string{"txt", "pdf", "png", "jpg", "jpeg", "gif", "doc", "docx"},
		SessionTTL:        time.Hour,
	}

	auth := service.NewAuthService(store.NewUserStore(sqlDB), store.NewSessionStore(sqlDB), cfg.SessionTTL, logger)
	props := service.NewPropertyService(
		store.NewPropertyStore(sqlDB),
		store.NewDocumentStore(sqlDB),
		store.NewMapsLinkStore(sqlDB),
		files, cfg.AllowedExtensions, logger)

	srv := httptest.NewServer(web.NewServer(auth, props, files, cfg, logger))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *testApp) login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (a *testApp) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Get(app.server.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	resp := app.login(t, "admin", "wrong")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	var page struct {
		Authenticated bool   `json:"authenticated"`
		FlashCategory string `json:"flash_category"`
		FlashMessage  string `json:"flash_message"`
	}
	app.getJSON(t, "/login", &page)
	assert.False(t, page.Authenticated)
	assert.Equal(t, "error", page.FlashCategory)
	assert.Equal(t, "Invalid username or password", page.FlashMessage)
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)

	resp := app.login(t, "admin", "admin123")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var list struct {
		Username string `json:"username"`
	}
	listResp := app.getJSON(t, "/", &list)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	assert.Equal(t, "admin", list.Username)

	logoutResp, err := app.client.Post(app.server.URL+"/logout", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	logoutResp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, logoutResp.StatusCode)

	afterResp, err := app.client.Get(app.server.URL + "/")
	require.NoError(t, err)
	afterResp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, afterResp.StatusCode)
	assert.Equal(t, "/login", afterResp.Header.Get("Location"))
}

// multipartProperty builds a create-property form with the given files.
func multipartProperty(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("documents", name)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestPropertyLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "admin", "admin123")

	body, contentType := multipartProperty(t,
		map[string]string{
			"title":         "Harbor View Flat",
			"description":   "Top floor, sea view",
			"property_type": "Apartment",
			"price":         "", // blank numeric fields coerce to zero
			"location":      "Harbor Street 9",
			"bedrooms":      "2",
			"bathrooms":     "1",
			"area":          "73",
			"owner_name":    "Mara Lind",
			"owner_contact": "mara@example.com",
		},
		map[string]string{
			"deed.pdf":  "deed contents",
			"setup.exe": "should be skipped",
		})

	resp, err := app.client.Post(app.server.URL+"/property", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var list struct {
		Properties []struct {
			ID     int64   `json:"id"`
			Title  string  `json:"title"`
			Price  float64 `json:"price"`
			Status string  `json:"status"`
		} `json:"properties"`
		FlashCategory string `json:"flash_category"`
	}
	app.getJSON(t, "/", &list)
	require.Len(t, list.Properties, 1)
	assert.Equal(t, "Harbor View Flat", list.Properties[0].Title)
	assert.Equal(t, 0.0, list.Properties[0].Price)
	assert.Equal(t, "Available", list.Properties[0].Status)
	assert.Equal(t, "success", list.FlashCategory)

	id := list.Properties[0].ID

	var detail struct {
		Property struct {
			Title string `json:"title"`
		} `json:"property"`
		Documents []struct {
			ID               int64  `json:"id"`
			Filename         string `json:"filename"`
			OriginalFilename string `json:"original_filename"`
		} `json:"documents"`
		MapsLinks []struct {
			ID int64 `json:"id"`
		} `json:"maps_links"`
	}
	detailPath := "/property/" + itoa(id)
	detailResp := app.getJSON(t, detailPath, &detail)
	require.Equal(t, http.StatusOK, detailResp.StatusCode)
	require.Len(t, detail.Documents, 1, "the .exe upload should have been skipped")
	assert.Equal(t, "deed.pdf", detail.Documents[0].OriginalFilename)
	assert.Empty(t, detail.MapsLinks)

	// Download the stored file back.
	dlResp, err := app.client.Get(app.server.URL + "/download/" + detail.Documents[0].Filename)
	require.NoError(t, err)
	data, err := io.ReadAll(dlResp.Body)
	dlResp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, dlResp.StatusCode)
	assert.Equal(t, "deed contents", string(data))
	assert.Contains(t, dlResp.Header.Get("Content-Disposition"), "attachment")

	// Update the listing.
	updateResp, err := app.client.PostForm(app.server.URL+detailPath, url.Values{
		"title":  {"Harbor View Flat (Sold)"},
		"price":  {"120000"},
		"status": {"Sold"},
	})
	require.NoError(t, err)
	updateResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, updateResp.StatusCode)

	app.getJSON(t, detailPath, &detail)
	assert.Equal(t, "Harbor View Flat (Sold)", detail.Property.Title)

	// Attach a maps link through the dedicated form.
	mapsResp, err := app.client.PostForm(app.server.URL+detailPath+"/maps", url.Values{
		"link_title":       {"Entrance"},
		"google_maps_link": {"https://maps.example.com/?q=harbor"},
		"latitude":         {"54.7"},
		"longitude":        {"25.3"},
	})
	require.NoError(t, err)
	mapsResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, mapsResp.StatusCode)

	app.getJSON(t, detailPath, &detail)
	require.Len(t, detail.MapsLinks, 1)

	// Delete everything and confirm the listing is gone.
	deleteResp, err := app.client.PostForm(app.server.URL+detailPath+"/delete", nil)
	require.NoError(t, err)
	deleteResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, deleteResp.StatusCode)

	app.getJSON(t, "/", &list)
	assert.Empty(t, list.Properties)

	notFoundResp, err := app.client.Get(app.server.URL + detailPath)
	require.NoError(t, err)
	notFoundResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFoundResp.StatusCode)
}

func TestAddMapsLinkValidation(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "admin", "admin123")

	body, contentType := multipartProperty(t, map[string]string{"title": "Bare"}, nil)
	resp, err := app.client.Post(app.server.URL+"/property", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var list struct {
		Properties []struct {
			ID int64 `json:"id"`
		} `json:"properties"`
	}
	app.getJSON(t, "/", &list)
	require.Len(t, list.Properties, 1)
	id := list.Properties[0].ID

	mapsResp, err := app.client.PostForm(app.server.URL+"/property/"+itoa(id)+"/maps", url.Values{
		"link_title":       {"Entrance"},
		"google_maps_link": {"https://maps.example.com"},
		"latitude":         {"not-a-number"},
		"longitude":        {"25.3"},
	})
	require.NoError(t, err)
	mapsResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, mapsResp.StatusCode)

	var detail struct {
		MapsLinks []struct {
			ID int64 `json:"id"`
		} `json:"maps_links"`
		FlashCategory string `json:"flash_category"`
	}
	app.getJSON(t, "/property/"+itoa(id), &detail)
	assert.Empty(t, detail.MapsLinks, "bad coordinates must reject the link")
	assert.Equal(t, "error", detail.FlashCategory)
}

func TestAddDocumentRejectsBadExtension(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "admin", "admin123")

	body, contentType := multipartProperty(t, map[string]string{"title": "Docs"}, nil)
	resp, err := app.client.Post(app.server.URL+"/property", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	var list struct {
		Properties []struct {
			ID int64 `json:"id"`
		} `json:"properties"`
	}
	app.getJSON(t, "/", &list)
	require.Len(t, list.Properties, 1)
	id := list.Properties[0].ID

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("document", "tool.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte("binary"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("document_type", "General"))
	require.NoError(t, w.Close())

	docResp, err := app.client.Post(app.server.URL+"/property/"+itoa(id)+"/documents", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	docResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, docResp.StatusCode)

	var detail struct {
		Documents []struct {
			ID int64 `json:"id"`
		} `json:"documents"`
		FlashCategory string `json:"flash_category"`
		FlashMessage  string `json:"flash_message"`
	}
	app.getJSON(t, "/property/"+itoa(id), &detail)
	assert.Empty(t, detail.Documents)
	assert.Equal(t, "error", detail.FlashCategory)
	assert.Equal(t, "File type not allowed", detail.FlashMessage)
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(t)

	var health struct {
		Status string `json:"status"`
	}
	resp := app.getJSON(t, "/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health.Status)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
