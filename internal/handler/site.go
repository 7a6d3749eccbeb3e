package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/ironsignalworks/deadgravel/internal/site"
)

// Root answers the bare service probe with plain text.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK /"))
}

// Health reports that the process is up, with the current UTC time.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("ts", func(e *jx.Encoder) {
			e.Str(h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

// SiteMeta returns the route metadata and shade settings for ?path=.
func (h *Handler) SiteMeta(w http.ResponseWriter, r *http.Request) {
	path := site.NormalizePath(r.URL.Query().Get("path"))
	route := h.routes.Resolve(path)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("path", func(e *jx.Encoder) { e.Str(path) })
		e.Field("route", func(e *jx.Encoder) { e.Str(route.Path) })
		e.Field("class", func(e *jx.Encoder) { e.Str(route.Class) })
		e.Field("maxOpacity", func(e *jx.Encoder) { e.Float64(site.MaxOpacity(path)) })
		e.Field("meta", func(e *jx.Encoder) { encodeMeta(e, route.Meta) })
		e.Field("nav", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, r := range h.routes.All() {
					e.Obj(func(e *jx.Encoder) {
						e.Field("path", func(e *jx.Encoder) { e.Str(r.Path) })
						e.Field("title", func(e *jx.Encoder) { e.Str(r.Meta.Title) })
						e.Field("active", func(e *jx.Encoder) { e.Bool(r.Path == route.Path) })
					})
				}
			})
		})
	})
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, &e)
}

// Merch returns the store catalogue.
func (h *Handler) Merch(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("storeEnabled", func(e *jx.Encoder) { e.Bool(h.catalog.StoreEnabled) })
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range h.catalog.Products {
					h.encodeProduct(e, p)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeMeta(e *jx.Encoder, m site.Meta) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(m.Title) })
		e.Field("description", func(e *jx.Encoder) { e.Str(m.Description) })
		e.Field("url", func(e *jx.Encoder) { e.Str(m.URL) })
		e.Field("image", func(e *jx.Encoder) { e.Str(m.Image) })
		e.Field("imageAlt", func(e *jx.Encoder) { e.Str(m.ImageAlt) })
	})
}

func (h *Handler) encodeProduct(e *jx.Encoder, p site.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(p.Title) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		// Decimal prices are written as JSON numbers with two decimals.
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.StringFixed(2))) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(p.Currency) })
		e.Field("displayPrice", func(e *jx.Encoder) { e.Str(p.DisplayPrice()) })
		e.Field("checkoutUrl", func(e *jx.Encoder) { e.Str(p.CheckoutURL) })
		e.Field("sizes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, s := range p.Sizes {
					e.Obj(func(e *jx.Encoder) {
						e.Field("label", func(e *jx.Encoder) { e.Str(s.Label) })
						e.Field("stock", func(e *jx.Encoder) { e.Int(s.Stock) })
						e.Field("available", func(e *jx.Encoder) { e.Bool(s.Available()) })
					})
				}
			})
		})
		e.Field("colors", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range p.Colors {
					e.Obj(func(e *jx.Encoder) {
						e.Field("label", func(e *jx.Encoder) { e.Str(c.Label) })
						e.Field("image", func(e *jx.Encoder) { e.Str(h.imageURL(c.Image)) })
					})
				}
			})
		})
		e.Field("defaultColor", func(e *jx.Encoder) { e.Str(p.DefaultColor) })
		e.Field("defaultImage", func(e *jx.Encoder) { e.Str(h.imageURL(p.Variant(p.DefaultColor).Image)) })
	})
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
