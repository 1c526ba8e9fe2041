package static

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	resolver, err := NewResolver(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return resolver
}

func TestResolveRootPathMapsToIndex(t *testing.T) {
	resolver := newTestResolver(t)

	for _, urlPath := range []string{"", "/"} {
		path, forbidden := resolver.Resolve(urlPath)
		if forbidden {
			t.Fatalf("Resolve(%q) forbidden", urlPath)
		}
		if path != filepath.Join(resolver.Root(), "index.html") {
			t.Errorf("Resolve(%q) = %s", urlPath, path)
		}
	}
}

func TestResolveLegitimatePaths(t *testing.T) {
	resolver := newTestResolver(t)

	cases := map[string]string{
		"/page.html":         "page.html",
		"/css/style.css":     filepath.Join("css", "style.css"),
		"/a/b/c/deep.txt":    filepath.Join("a", "b", "c", "deep.txt"),
		"/with%20space.txt":  "with space.txt",
		"/dot.in.name.tar":   "dot.in.name.tar",
		"/css/../index.html": "index.html",
	}

	for urlPath, relative := range cases {
		path, forbidden := resolver.Resolve(urlPath)
		if forbidden {
			t.Errorf("Resolve(%q) forbidden", urlPath)
			continue
		}
		expected := filepath.Join(resolver.Root(), relative)
		if path != expected {
			t.Errorf("Resolve(%q) = %s, want %s", urlPath, path, expected)
		}
	}
}

func TestResolveTraversalForbidden(t *testing.T) {
	resolver := newTestResolver(t)

	attempts := []string{
		"/../../etc/passwd",
		"/..",
		"/../sibling.txt",
		"/a/../../../etc/shadow",
		"/%2e%2e/%2e%2e/secret",
		"/css/%2e%2e/%2e%2e/secret",
	}

	for _, urlPath := range attempts {
		path, forbidden := resolver.Resolve(urlPath)
		if !forbidden {
			t.Errorf("Resolve(%q) = %s, want forbidden", urlPath, path)
		}
		if forbidden && path != "" {
			t.Errorf("forbidden result must not carry a path, got %s", path)
		}
	}
}

func TestResolveResultAlwaysUnderRoot(t *testing.T) {
	resolver := newTestResolver(t)

	// A grab bag of shapes; every accepted result must stay inside the root.
	inputs := []string{
		"/", "/index.html", "/./a", "/a/./b", "/a//b", "/%2e/ok.txt",
		"/..%2fescape", "/x/../..", "/...", "/..hidden",
	}

	for _, urlPath := range inputs {
		path, forbidden := resolver.Resolve(urlPath)
		if forbidden {
			continue
		}
		if path != resolver.Root() && !strings.HasPrefix(path, resolver.Root()+string(filepath.Separator)) {
			t.Errorf("Resolve(%q) = %s escapes root %s", urlPath, path, resolver.Root())
		}
	}
}
