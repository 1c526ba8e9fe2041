package http

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Response accumulates what the handler decided and serializes it in one
// shot: status line, insertion-ordered headers, blank line, body. Compression
// happens fully in memory before any header is written, so Content-Length
// always matches the bytes that actually go out.
type Response struct {
	Protocol    string
	Status      uint16
	ContentType string
	Headers     Headers
	Body        []byte

	// Compress is decided by the connection handler from the client's
	// Accept-Encoding and the content type's eligibility.
	Compress bool
}

func (res *Response) Reset() {
	res.Protocol = defaultProtocol
	res.Status = StatusOK
	res.ContentType = ""
	res.Headers.Reset()
	res.Body = nil
	res.Compress = false
}

// ShouldCompress implements the negotiation rule: the client must advertise
// the gzip token and the content type must be compression-eligible.
func ShouldCompress(acceptEncoding, contentType string) bool {
	if !strings.Contains(strings.ToLower(acceptEncoding), "gzip") {
		return false
	}
	return IsCompressible(contentType)
}

func (res *Response) Write(w io.Writer) error {
	body := res.Body

	if res.Compress {
		encoded, err := gzipEncode(body)
		if err != nil {
			return fmt.Errorf("http: compressing response body: %w", err)
		}
		body = encoded
		res.Headers.Set("Content-Encoding", "gzip")
		res.Headers.Set("Vary", "Accept-Encoding")
	}

	if res.ContentType != "" {
		res.Headers.Set("Content-Type", res.ContentType)
	}
	res.Headers.Set("Content-Length", strconv.Itoa(len(body)))

	protocol := res.Protocol
	if protocol == "" {
		protocol = defaultProtocol
	}

	var head bytes.Buffer
	fmt.Fprintf(&head, "%s %d %s\r\n", protocol, res.Status, ReasonPhrase(res.Status))
	for _, field := range res.Headers.Fields() {
		fmt.Fprintf(&head, "%s: %s\r\n", field.Name, field.Value)
	}
	head.WriteString("\r\n")

	if _, err := w.Write(head.Bytes()); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

func gzipEncode(body []byte) ([]byte, error) {
	var buf bytes.Buffer

	gw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(body); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
