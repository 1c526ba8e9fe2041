package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// MaxHeaderSize bounds how many bytes we accumulate while hunting for the
	// end of the header block. Crossing it is a framing failure, not a
	// truncation.
	MaxHeaderSize = 64 * 1024

	readChunkSize = 1024

	defaultProtocol = "HTTP/1.1"
)

var (
	ErrMalformedRequest  = errors.New("http: malformed request line")
	ErrHeaderTooLarge    = errors.New("http: header block exceeds limit")
	ErrIncompleteRequest = errors.New("http: connection closed before request completed")
)

var crlfcrlf = []byte("\r\n\r\n")

// Request is built once per connection by Parse and read-only afterwards.
type Request struct {
	Method    string
	RawTarget string
	Path      string
	Protocol  string
	Query     QueryValues
	Headers   Headers
	Body      []byte

	RemoteAddr string
}

func (req *Request) HeaderValue(name string) (string, bool) {
	return req.Headers.Get(name)
}

// Parse frames one request off the stream: it accumulates fixed-size reads
// until the blank line ending the header block, parses the request line and
// headers, then reads a POST body up to Content-Length. The reader is
// expected to enforce per-read deadlines; any read error before the header
// boundary aborts the request.
func (req *Request) Parse(r io.Reader) error {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	boundary := -1
	for {
		if i := bytes.Index(buf, crlfcrlf); i >= 0 {
			boundary = i
			break
		}
		if len(buf) > MaxHeaderSize {
			return ErrHeaderTooLarge
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				if len(buf) == 0 {
					return io.EOF
				}
				// Give the buffered tail one last look before giving up.
				if i := bytes.Index(buf, crlfcrlf); i >= 0 {
					boundary = i
					break
				}
				return ErrIncompleteRequest
			}
			return err
		}
	}

	if err := req.parseHeaderBlock(buf[:boundary]); err != nil {
		return err
	}

	return req.readBody(r, buf[boundary+len(crlfcrlf):])
}

func (req *Request) parseHeaderBlock(block []byte) error {
	lines := strings.Split(string(block), "\r\n")

	parts := strings.Split(lines[0], " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: %q", ErrMalformedRequest, lines[0])
	}

	req.Method = parts[0]
	req.RawTarget = parts[1]
	req.Protocol = defaultProtocol
	if len(parts) >= 3 && parts[2] != "" {
		req.Protocol = parts[2]
	}

	path, rawQuery, hasQuery := strings.Cut(req.RawTarget, "?")
	req.Path = UnescapePath(path)
	if hasQuery {
		req.Query = ParseQuery(rawQuery)
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		i := strings.Index(line, ":")
		if i < 0 {
			continue
		}
		name := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		req.Headers.Set(name, value)
	}

	return nil
}

// readBody collects the declared Content-Length for POST requests, starting
// with whatever already sits in the buffer past the header boundary. A stream
// that closes early delivers the partial body rather than failing; that
// tolerance is part of the server's observable behavior.
func (req *Request) readBody(r io.Reader, buffered []byte) error {
	if !strings.EqualFold(req.Method, "POST") {
		return nil
	}

	value, found := req.Headers.Get("Content-Length")
	if !found {
		return nil
	}
	contentLength, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || contentLength < 0 {
		return nil
	}

	body := make([]byte, 0, contentLength)
	if len(buffered) > contentLength {
		buffered = buffered[:contentLength]
	}
	body = append(body, buffered...)

	chunk := make([]byte, readChunkSize)
	for len(body) < contentLength {
		n, err := r.Read(chunk)
		if n > 0 {
			remaining := contentLength - len(body)
			if n > remaining {
				n = remaining
			}
			body = append(body, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}

	req.Body = body
	return nil
}

func (req *Request) Reset() {
	req.Method = ""
	req.RawTarget = ""
	req.Path = ""
	req.Protocol = ""
	req.Query = QueryValues{}
	req.Headers.Reset()
	req.Body = nil
	req.RemoteAddr = ""
}
