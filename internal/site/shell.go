package site

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-faster/errors"
)

var headTemplate = template.Must(template.New("head").Parse(`<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.URL}}">
<meta property="og:image" content="{{.Image}}">
<meta property="og:image:alt" content="{{.ImageAlt}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:url" content="{{.URL}}">
<meta name="twitter:image" content="{{.Image}}">
<meta name="twitter:image:alt" content="{{.ImageAlt}}">
<link rel="canonical" href="{{.URL}}">
`))

// HeadTags renders the title, description, Open Graph, Twitter and canonical
// tags for m.
func HeadTags(m Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := headTemplate.Execute(&buf, m); err != nil {
		return nil, errors.Wrap(err, "render head")
	}
	return buf.Bytes(), nil
}

// InjectHead replaces the document title of page with the tags for m.
func InjectHead(page []byte, m Meta) ([]byte, error) {
	tags, err := HeadTags(m)
	if err != nil {
		return nil, err
	}

	if start := bytes.Index(page, []byte("<title>")); start >= 0 {
		if end := bytes.Index(page[start:], []byte("</title>")); end >= 0 {
			end += start + len("</title>")
			page = append(page[:start:start], page[end:]...)
		}
	}

	idx := bytes.Index(page, []byte("</head>"))
	if idx < 0 {
		return append(tags, page...), nil
	}
	out := make([]byte, 0, len(page)+len(tags))
	out = append(out, page[:idx]...)
	out = append(out, tags...)
	out = append(out, page[idx:]...)
	return out, nil
}

// Shell serves a built single-page client. Existing files are served as is;
// every other path gets index.html with the head tags of its route.
type Shell struct {
	files  fs.FS
	static http.Handler
	index  []byte
	routes *Routes
}

// NewShell serves the client built into dir.
func NewShell(dir string, routes *Routes) (*Shell, error) {
	fsys := os.DirFS(dir)
	index, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, errors.Wrapf(err, "read index of %s", dir)
	}
	return &Shell{
		files:  fsys,
		static: http.FileServerFS(fsys),
		index:  index,
		routes: routes,
	}, nil
}

func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != "index.html" {
		if info, err := fs.Stat(s.files, name); err == nil && !info.IsDir() {
			s.static.ServeHTTP(w, r)
			return
		}
	}

	route := s.routes.Resolve(r.URL.Path)
	page, err := InjectHead(s.index, route.Meta)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}
