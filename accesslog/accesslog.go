// Package accesslog appends one record per framed request to a daily log
// file named YYYY-MM-DD.log (UTC) under the configured directory. A single
// mutex serializes the whole open-append-close section so records from
// concurrent connections never interleave.
package accesslog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bunicodea/gohttpd/filesystem"
	"github.com/bunicodea/gohttpd/http"
)

const separator = "--------------------------------------------------"

type Logger struct {
	dir string
	fs  filesystem.Filesystem

	mu sync.Mutex

	// now is swapped out by tests to pin the day file.
	now func() time.Time
}

func New(dir string, fs filesystem.Filesystem) *Logger {
	return &Logger{
		dir: dir,
		fs:  fs,
		now: time.Now,
	}
}

// LogRequest formats and appends one complete record. Implements
// http.AccessLogger.
func (l *Logger) LogRequest(id string, req *http.Request) {
	timestamp := l.now().UTC()

	var b strings.Builder
	b.WriteString(separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s | %s | %s | %s | %s\n",
		timestamp.Format(time.RFC3339), id, req.RemoteAddr, req.Method, req.RawTarget)

	if req.Query.Len() > 0 {
		b.WriteString("query:\n")
		for _, pair := range req.Query.Pairs() {
			fmt.Fprintf(&b, "  %s = %s\n", pair.Key, pair.Value)
		}
	}

	b.WriteString("headers:\n")
	for _, field := range req.Headers.Fields() {
		fmt.Fprintf(&b, "  %s: %s\n", field.Name, field.Value)
	}

	if len(req.Body) > 0 {
		b.WriteString("body:\n")
		b.WriteString(bodyText(req.Body))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	l.append(timestamp, b.String())
}

// LogError appends an error entry for a connection that failed at the
// handler boundary. Implements http.AccessLogger.
func (l *Logger) LogError(id string, err error) {
	timestamp := l.now().UTC()

	var b strings.Builder
	b.WriteString(separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s | %s | ERROR | %s\n\n", timestamp.Format(time.RFC3339), id, err)

	l.append(timestamp, b.String())
}

func (l *Logger) append(timestamp time.Time, record string) {
	path := filepath.Join(l.dir, timestamp.Format("2006-01-02")+".log")

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fs.AppendFile(path, []byte(record)); err != nil {
		slog.Error("access log append failed", "path", path, "error", err)
	}
}

// bodyText renders the raw body for the log. Bodies that are not valid UTF-8
// are summarized instead of dumped.
func bodyText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return fmt.Sprintf("<%d bytes of binary data>", len(body))
}
