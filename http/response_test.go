package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"strings"
	"testing"
)

func splitResponse(t *testing.T, raw []byte) (statusLine string, headers map[string]string, body []byte) {
	t.Helper()

	i := bytes.Index(raw, []byte("\r\n\r\n"))
	if i < 0 {
		t.Fatalf("no header terminator in response: %q", raw)
	}

	lines := strings.Split(string(raw[:i]), "\r\n")
	headers = make(map[string]string)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			t.Fatalf("malformed header line %q", line)
		}
		headers[strings.ToLower(name)] = value
	}

	return lines[0], headers, raw[i+4:]
}

func TestResponseWritePlain(t *testing.T) {
	res := Response{}
	res.Reset()
	res.ContentType = "text/plain"
	res.Body = []byte("hello")

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		t.Fatal(err)
	}

	statusLine, headers, body := splitResponse(t, buf.Bytes())

	if statusLine != "HTTP/1.1 200 OK" {
		t.Errorf("unexpected status line %q", statusLine)
	}
	if headers["content-type"] != "text/plain" {
		t.Errorf("unexpected content type %q", headers["content-type"])
	}
	if headers["content-length"] != "5" {
		t.Errorf("unexpected content length %q", headers["content-length"])
	}
	if _, found := headers["content-encoding"]; found {
		t.Error("uncompressed response must not carry Content-Encoding")
	}
	if string(body) != "hello" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestResponseWriteGzipRoundTrip(t *testing.T) {
	original := strings.Repeat("body { margin: 0; }\n", 50)

	res := Response{}
	res.Reset()
	res.ContentType = "text/css"
	res.Body = []byte(original)
	res.Compress = true

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		t.Fatal(err)
	}

	_, headers, body := splitResponse(t, buf.Bytes())

	if headers["content-encoding"] != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", headers["content-encoding"])
	}
	if headers["vary"] != "Accept-Encoding" {
		t.Errorf("expected Vary header, got %q", headers["vary"])
	}
	// Content-Length must describe the encoded bytes on the wire.
	if headers["content-length"] != strconv.Itoa(len(body)) {
		t.Errorf("content length %s does not match encoded body %d", headers["content-length"], len(body))
	}

	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := io.ReadAll(gr)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != original {
		t.Error("decompressed body differs from original")
	}
}

func TestResponseWriteGzipEmptyBody(t *testing.T) {
	res := Response{}
	res.Reset()
	res.ContentType = "text/plain"
	res.Compress = true

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		t.Fatal(err)
	}

	_, headers, body := splitResponse(t, buf.Bytes())

	// Negotiated compression applies even to an empty body: the encoding
	// header is present exactly when the client asked and the type is
	// eligible, with no body-length carve-out.
	if headers["content-encoding"] != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", headers["content-encoding"])
	}
	if headers["content-length"] != strconv.Itoa(len(body)) {
		t.Errorf("content length %s does not match encoded body %d", headers["content-length"], len(body))
	}

	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := io.ReadAll(gr)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty decoded body, got %q", decoded)
	}
}

func TestResponseWriteUsesRequestProtocol(t *testing.T) {
	res := Response{}
	res.Reset()
	res.Protocol = "HTTP/1.0"
	res.Status = StatusNotFound
	res.ContentType = "text/plain"
	res.Body = []byte("gone")

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		t.Fatal(err)
	}

	statusLine, _, _ := splitResponse(t, buf.Bytes())
	if statusLine != "HTTP/1.0 404 Not Found" {
		t.Errorf("unexpected status line %q", statusLine)
	}
}

func TestResponseHeaderOrderIsInsertionOrder(t *testing.T) {
	res := Response{}
	res.Reset()
	res.Headers.Set("X-First", "1")
	res.Headers.Set("X-Second", "2")
	res.ContentType = "text/plain"
	res.Body = []byte("x")

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		t.Fatal(err)
	}

	raw := buf.String()
	first := strings.Index(raw, "X-First")
	second := strings.Index(raw, "X-Second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("headers out of insertion order: %q", raw)
	}
}

func TestShouldCompress(t *testing.T) {
	cases := []struct {
		acceptEncoding string
		contentType    string
		want           bool
	}{
		{"gzip", "text/html", true},
		{"gzip, deflate, br", "text/css", true},
		{"GZIP", "application/json", true},
		{"", "text/html", false},
		{"deflate", "text/html", false},
		{"gzip", "image/png", false},
		{"gzip", "application/octet-stream", false},
	}

	for _, c := range cases {
		got := ShouldCompress(c.acceptEncoding, c.contentType)
		if got != c.want {
			t.Errorf("ShouldCompress(%q, %q) = %v, want %v", c.acceptEncoding, c.contentType, got, c.want)
		}
	}
}
