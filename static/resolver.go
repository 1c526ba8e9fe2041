package static

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bunicodea/gohttpd/http"
)

// Resolver maps decoded URL paths onto the content root. The root is the
// trust boundary: anything that normalizes to a path outside it is refused.
type Resolver struct {
	root     string
	foldCase bool
}

func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("static: resolving content root %s: %w", root, err)
	}

	return &Resolver{
		root: abs,
		// The prefix check must fold case where the filesystem does, or an
		// escape spelled in a different case slips through.
		foldCase: runtime.GOOS == "windows" || runtime.GOOS == "darwin",
	}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the absolute file path for a URL path, or forbidden=true.
// The containment check runs on the normalized absolute path, never the raw
// string; that is what defeats ../ traversal and its encoded variants.
func (r *Resolver) Resolve(urlPath string) (string, bool) {
	p := urlPath
	if p == "" || p == "/" {
		p = "index.html"
	}
	p = strings.TrimPrefix(p, "/")

	// Framing already decoded once; decode again so %2e%2e spelled into the
	// decoded path cannot smuggle a dot segment past normalization.
	p = http.UnescapePath(p)

	abs, err := filepath.Abs(filepath.Join(r.root, filepath.FromSlash(p)))
	if err != nil {
		return "", true
	}

	if !r.contains(abs) {
		return "", true
	}

	return abs, false
}

func (r *Resolver) contains(path string) bool {
	root := r.root
	if r.foldCase {
		root = strings.ToLower(root)
		path = strings.ToLower(path)
	}

	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
