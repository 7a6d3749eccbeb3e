// Package site holds the static description of the public website: its
// routes with their head metadata, the merch catalogue and the handler that
// serves the built client shell.
package site

import "strings"

// DefaultBaseURL is the canonical origin of the public site.
const DefaultBaseURL = "https://deadgravel.com"

const (
	// ShadeMaxOpacity is the scroll shade ceiling on every route but home.
	ShadeMaxOpacity = 0.75

	imagePath = "/thumb.jpg"
	imageAlt  = "Dead Gravel promotional artwork"
)

// Meta is the head metadata applied when a route is shown.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	ImageAlt    string `json:"imageAlt"`
}

// Route is a top-level page of the site.
type Route struct {
	Path  string `json:"path"`
	Class string `json:"class"`
	Meta  Meta   `json:"meta"`
}

// Routes resolves request paths to pages.
type Routes struct {
	byPath map[string]Route
	home   Route
}

// NewRoutes builds the route table with absolute URLs rooted at baseURL.
func NewRoutes(baseURL string) *Routes {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	image := baseURL + imagePath

	routes := []Route{
		{
			Path:  "/",
			Class: "route-home",
			Meta: Meta{
				Title:       "Dead Gravel | Official Site",
				Description: "Rust, ruin, and rock'n'roll. Listen to 'Ruin My Fun' and explore the world of Dead Gravel.",
				URL:         baseURL + "/",
			},
		},
		{
			Path:  "/bio",
			Class: "route-bio",
			Meta: Meta{
				Title:       "Dead Gravel | Bio",
				Description: "Meet Dead Gravel: lineup, artwork, and the story behind their southern gothic grit and rock'n'roll sound.",
				URL:         baseURL + "/bio",
			},
		},
		{
			Path:  "/merch",
			Class: "route-merch",
			Meta: Meta{
				Title:       "Dead Gravel | Merch",
				Description: "Official Dead Gravel merch and store updates.",
				URL:         baseURL + "/merch",
			},
		},
	}

	r := &Routes{byPath: make(map[string]Route, len(routes))}
	for _, route := range routes {
		route.Meta.Image = image
		route.Meta.ImageAlt = imageAlt
		r.byPath[route.Path] = route
	}
	r.home = r.byPath["/"]
	return r
}

// NormalizePath strips trailing slashes from every path but the root.
func NormalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// Resolve returns the route for path. Paths without an exact entry get the
// home route.
func (r *Routes) Resolve(path string) Route {
	if route, ok := r.byPath[NormalizePath(path)]; ok {
		return route
	}
	return r.home
}

// All returns the routes in navigation order.
func (r *Routes) All() []Route {
	return []Route{r.byPath["/"], r.byPath["/bio"], r.byPath["/merch"]}
}

// MaxOpacity returns the scroll shade ceiling for path: zero on the exact
// home path, ShadeMaxOpacity everywhere else, including unknown paths.
func MaxOpacity(path string) float64 {
	if NormalizePath(path) == "/" {
		return 0
	}
	return ShadeMaxOpacity
}
