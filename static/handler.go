package static

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bunicodea/gohttpd/filesystem"
	"github.com/bunicodea/gohttpd/http"
)

const notFoundPage = "404.html"

var genericNotFoundBody = []byte("404 Not Found - the requested resource does not exist")

// Handler serves files from the content root. It fills in the response for
// every dispatched request: 403 when the resolver refuses the path, 404 when
// the file is missing (custom 404 page when the site provides one), 200 with
// the registry content type otherwise.
type Handler struct {
	resolver *Resolver
	fs       filesystem.Filesystem
	logger   *slog.Logger
}

func NewHandler(root string, fs filesystem.Filesystem, logger *slog.Logger) (*Handler, error) {
	resolver, err := NewResolver(root)
	if err != nil {
		return nil, err
	}

	return &Handler{
		resolver: resolver,
		fs:       fs,
		logger:   logger,
	}, nil
}

func (h *Handler) Serve(ctx *http.RequestCtx) error {
	res := &ctx.Response

	path, forbidden := h.resolver.Resolve(ctx.Request.Path)
	if forbidden {
		// Never echo the attempted path back to the client.
		h.logger.Warn("path escapes content root", "remote", ctx.Request.RemoteAddr, "target", ctx.Request.RawTarget)
		res.Status = http.StatusForbidden
		res.ContentType = "text/plain"
		res.Body = []byte("403 Forbidden")
		return nil
	}

	exists, err := h.fs.FileExists(path)
	if err != nil {
		return fmt.Errorf("static: stat %s: %w", path, err)
	}
	if !exists {
		h.notFound(res)
		return nil
	}

	content, err := h.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("static: reading %s: %w", path, err)
	}

	res.Status = http.StatusOK
	res.ContentType = http.MimeTypeByExtension(strings.ToLower(filepath.Ext(path)))
	res.Body = content
	return nil
}

// notFound prefers a site-provided 404.html at the top of the content root.
// Its absence, or a failure reading it, falls back to the generic body.
func (h *Handler) notFound(res *http.Response) {
	res.Status = http.StatusNotFound

	custom := filepath.Join(h.resolver.Root(), notFoundPage)
	if exists, err := h.fs.FileExists(custom); err == nil && exists {
		if content, err := h.fs.ReadFile(custom); err == nil {
			res.ContentType = "text/html"
			res.Body = content
			return
		}
	}

	res.ContentType = "text/plain"
	res.Body = genericNotFoundBody
}
