package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foomo/flatfileserver/pkg/flatfile"
	"github.com/foomo/flatfileserver/pkg/site"
	"github.com/foomo/flatfileserver/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testModTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func writeContent(t *testing.T, dir, rel, body string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	require.NoError(t, os.Chtimes(path, testModTime, testModTime))
	return path
}

func newTestServer(t *testing.T, opts ...HTTPOption) (*httptest.Server, string) {
	t.Helper()
	l := zaptest.NewLogger(t)
	dir := t.TempDir()
	writeContent(t, dir, "site.txt", "Title: My Site")
	writeContent(t, dir, "home/home.txt", "Title: Home\n----\nUuid: page://home-id")
	writeContent(t, dir, "1_about/default.txt", "Title: About\n----\nUuid: page://about-id")
	writeContent(t, dir, "1_about/photo.jpg.txt", "Alt: A photo")
	writeContent(t, dir, "1_about/team/default.txt", "Title: Team")
	writeContent(t, dir, "_drafts/2_wip/default.txt", "Title: WIP")

	s := site.New(l, flatfile.New(l, dir), site.WithBaseURL("https://example.com/"))
	svr := httptest.NewServer(NewHTTP(l, s, opts...))
	t.Cleanup(svr.Close)
	return svr, dir
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHTTP_Lookups(t *testing.T) {
	svr, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{name: "page", path: "/api/pages/about", status: http.StatusOK, want: `"title":"About"`},
		{name: "page by uuid", path: "/api/pages/about-id", status: http.StatusOK, want: `"path":"about"`},
		{name: "page trailing slash", path: "/api/pages/about/", status: http.StatusOK, want: `"title":"About"`},
		{name: "home", path: "/api/pages/", status: http.StatusOK, want: `"title":"Home"`},
		{name: "page is not a file", path: "/api/pages/about/photo.jpg.txt", status: http.StatusNotFound, want: `"code":1`},
		{name: "file", path: "/api/files/about/photo.jpg.txt", status: http.StatusOK, want: `"kind":"file"`},
		{name: "find", path: "/api/find/about/team", status: http.StatusOK, want: `"title":"Team"`},
		{name: "missing", path: "/api/find/nope", status: http.StatusNotFound, want: `"status":404`},
		{name: "title", path: "/about", status: http.StatusOK, want: "About"},
		{name: "title home", path: "/", status: http.StatusOK, want: "Home"},
		{name: "title missing", path: "/nope", status: http.StatusNotFound, want: "nothing found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, svr.URL+tt.path)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestHTTP_Children(t *testing.T) {
	svr, _ := newTestServer(t)

	status, body := get(t, svr.URL+"/api/children/about")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"path":"about/team"`)
	assert.Contains(t, body, `"path":"about/photo.jpg.txt"`)
	assert.NotContains(t, body, `"path":"about"`)

	// about/team is unlisted and the file has no ordering prefix
	status, body = get(t, svr.URL+"/api/children/about?listed=true")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"reply":[]}`, body)

	status, body = get(t, svr.URL+"/api/children/about/team")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"reply":[]}`, body)
}

func TestHTTP_RefreshBeforeLookup(t *testing.T) {
	svr, dir := newTestServer(t)

	status, _ := get(t, svr.URL+"/api/pages/contact")
	assert.Equal(t, http.StatusNotFound, status)

	writeContent(t, dir, "3_contact/default.txt", "Title: Contact")

	status, body := get(t, svr.URL+"/api/pages/contact")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"title":"Contact"`)
}

func TestHTTP_Update(t *testing.T) {
	svr, _ := newTestServer(t)

	resp, err := http.Post(svr.URL+"/api/update", "application/json", nil) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"success":true`)
	assert.Contains(t, string(body), `"numberOfModels":6`)
	assert.Contains(t, string(body), `"numberOfPages":4`)
	assert.Contains(t, string(body), `"numberOfFiles":1`)
}

func TestHTTP_Site(t *testing.T) {
	svr, _ := newTestServer(t)

	status, body := get(t, svr.URL+"/api/site")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"baseUrl":"https://example.com"`)
	assert.Contains(t, body, `"about/team"`)
}

func TestHTTP_SiteFromSnapshot(t *testing.T) {
	l := zaptest.NewLogger(t)
	history, err := snapshot.New(l, snapshot.WithDir(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, history.Add(context.Background(), []byte(`{"models":{"cached":{}}}`)))

	// the content root does not exist so the site never loads
	s := site.New(l, flatfile.New(l, filepath.Join(t.TempDir(), "missing")))
	svr := httptest.NewServer(NewHTTP(l, s, WithHistory(history)))
	defer svr.Close()

	status, body := get(t, svr.URL+"/api/site")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"models":{"cached":{}}}`, body)

	status, _ = get(t, svr.URL+"/api/pages/about")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_SiteNotLoaded(t *testing.T) {
	l := zaptest.NewLogger(t)
	s := site.New(l, flatfile.New(l, filepath.Join(t.TempDir(), "missing")))
	svr := httptest.NewServer(NewHTTP(l, s))
	defer svr.Close()

	status, body := get(t, svr.URL+"/api/site")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, `"code":2`)
}

func TestHTTP_RobotsAndSitemap(t *testing.T) {
	svr, _ := newTestServer(t)

	status, body := get(t, svr.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Sitemap: https://example.com/sitemap.xml")

	status, body = get(t, svr.URL+"/sitemap.xml")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<loc>https://example.com/about</loc>")
	assert.Contains(t, body, "<lastmod>2024-03-01</lastmod>")
	// unlisted and draft pages are left out
	assert.NotContains(t, body, "team")
	assert.NotContains(t, body, "wip")
}

func TestHTTP_WithPath(t *testing.T) {
	svr, _ := newTestServer(t, WithPath("/kirby/"))

	status, body := get(t, svr.URL+"/kirby/api/pages/about")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"title":"About"`)

	status, _ = get(t, svr.URL+"/api/pages/about")
	assert.Equal(t, http.StatusNotFound, status)
}
