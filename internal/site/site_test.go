package site

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":        "/",
		"/":       "/",
		"//":      "/",
		"/bio":    "/bio",
		"/bio/":   "/bio",
		"/bio///": "/bio",
		"/merch/": "/merch",
		"/bio/x/": "/bio/x",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), "input %q", in)
	}
}

func TestRoutes_Resolve(t *testing.T) {
	r := NewRoutes("https://example.com/")

	bio := r.Resolve("/bio/")
	assert.Equal(t, "/bio", bio.Path)
	assert.Equal(t, "route-bio", bio.Class)
	assert.Equal(t, "Dead Gravel | Bio", bio.Meta.Title)
	assert.Equal(t, "https://example.com/bio", bio.Meta.URL)
	assert.Equal(t, "https://example.com/thumb.jpg", bio.Meta.Image)

	merch := r.Resolve("/merch")
	assert.Equal(t, "Dead Gravel | Merch", merch.Meta.Title)

	for _, p := range []string{"/", "/unknown", "/bio/tour"} {
		got := r.Resolve(p)
		assert.Equal(t, "/", got.Path, "path %q", p)
		assert.Equal(t, "https://example.com/", got.Meta.URL)
	}

	assert.Len(t, r.All(), 3)
	assert.Equal(t, DefaultBaseURL+"/", NewRoutes("").Resolve("/").Meta.URL)
}

func TestMaxOpacity(t *testing.T) {
	assert.Zero(t, MaxOpacity("/"))
	assert.Zero(t, MaxOpacity(""))
	assert.Equal(t, 0.75, MaxOpacity("/bio/"))
	assert.Equal(t, 0.75, MaxOpacity("/merch"))
	assert.Equal(t, 0.75, MaxOpacity("/somewhere"))
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c.Products, 3)
	assert.False(t, c.StoreEnabled)

	shirt := c.Products[0]
	assert.Equal(t, "EUR 21.99", shirt.DisplayPrice())
	assert.True(t, decimal.RequireFromString("21.99").Equal(shirt.Price))
	assert.False(t, shirt.Sizes[2].Available(), "L is out of stock")
	assert.True(t, shirt.Sizes[0].Available())

	assert.Equal(t, "/assets/images/merch1-black.jpeg", shirt.Variant("Black").Image)
	assert.Equal(t, "Yellow", shirt.Variant("Purple").Label)
	assert.Equal(t, Color{}, Product{}.Variant("Black"))
}

func TestInjectHead(t *testing.T) {
	page := []byte("<html><head><title>Vite</title><meta charset=\"utf-8\"></head><body></body></html>")
	meta := NewRoutes(DefaultBaseURL).Resolve("/merch").Meta

	out, err := InjectHead(page, meta)
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "<title>Vite</title>")
	assert.Contains(t, s, "<title>Dead Gravel | Merch</title>")
	assert.Contains(t, s, `<meta property="og:url" content="https://deadgravel.com/merch">`)
	assert.Contains(t, s, `<link rel="canonical" href="https://deadgravel.com/merch">`)
	assert.Contains(t, s, `<meta name="twitter:image:alt" content="Dead Gravel promotional artwork">`)
	assert.Contains(t, s, "</head><body>")

	// The source page is left untouched.
	assert.Contains(t, string(page), "<title>Vite</title>")
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte("<html><head><title>x</title></head><body>app</body></html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o600))

	shell, err := NewShell(dir, NewRoutes(DefaultBaseURL))
	require.NoError(t, err)

	get := func(p string) (*http.Response, string) {
		w := httptest.NewRecorder()
		shell.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		resp := w.Result()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/assets/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", body)

	resp, body = get("/bio/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<title>Dead Gravel | Bio</title>")
	assert.Contains(t, body, "app")

	_, body = get("/")
	assert.Contains(t, body, "<title>Dead Gravel | Official Site</title>")

	_, err = NewShell(t.TempDir(), NewRoutes(DefaultBaseURL))
	assert.Error(t, err)
}
