package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultReadTimeout  = 5 * time.Second
	DefaultWriteTimeout = 5 * time.Second
)

const scopeName = "github.com/bunicodea/gohttpd/http"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)

	requestCounter metric.Int64Counter
)

func init() {
	var err error
	requestCounter, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Handled connections by outcome, method and status"),
		metric.WithUnit("{request}"))
	if err != nil {
		panic(err)
	}
}

// Handler fills in ctx.Response for a framed request. A returned error means
// the response cannot be produced at all; the connection is closed without
// writing anything and the error is recorded.
type Handler func(ctx *RequestCtx) error

// AccessLogger receives one record per framed request plus error entries from
// the connection boundary. Implementations must be safe for concurrent use.
type AccessLogger interface {
	LogRequest(id string, req *Request)
	LogError(id string, err error)
}

type RequestCtx struct {
	// ID tags the connection across the access log, the trace span and the
	// X-Request-Id response header.
	ID string

	Request  Request
	Response Response
}

type Server struct {
	Name    string
	Handler Handler

	AccessLog AccessLogger
	Logger    *slog.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// mu guards listener and shuttingDown; inFlight.Add runs under it so a
	// connection accepted during shutdown cannot slip past inFlight.Wait.
	mu           sync.Mutex
	listener     net.Listener
	inFlight     sync.WaitGroup
	shuttingDown bool
}

func NewServer(name string, handler Handler) *Server {
	return &Server{
		Name:         name,
		Handler:      handler,
		Logger:       slog.Default(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http: listening on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections until Shutdown closes the listener. Transient
// accept failures are logged and skipped; each accepted connection runs on
// its own goroutine and never blocks the loop.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Logger.Error("accept failed", "error", err)
			continue
		}

		s.mu.Lock()
		if s.shuttingDown {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.inFlight.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.inFlight.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

func (s *Server) isShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// ServeConn drives one connection from framing through close: frame the
// request, log it, gate the method, dispatch the handler, negotiate
// compression, write the response. Panics are caught here so a broken
// handler never takes the accept loop down.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reqCtx := RequestCtx{ID: uuid.NewString()}
	req := &reqCtx.Request
	res := &reqCtx.Response

	outcome := "aborted"

	ctx, span := tracer.Start(ctx, "http.request")
	defer span.End()

	// One deferred block owns both the panic boundary and the telemetry, so
	// the counter fires on every exit: aborts, errors, panics and successes.
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = "panic"
			s.recordError(reqCtx.ID, fmt.Errorf("http: connection handler panic: %v", recovered))
		}
		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.Int("http.status", int(res.Status)),
			attribute.String("http.outcome", outcome),
		)
		requestCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.Int("status", int(res.Status)),
				attribute.String("outcome", outcome),
			))
	}()

	req.RemoteAddr = remoteIP(conn)

	if err := req.Parse(&timeoutReader{conn: conn, timeout: s.ReadTimeout}); err != nil {
		// The connection never yielded a usable request: drop it without a
		// response or an access-log record.
		if err != io.EOF {
			s.Logger.Debug("request framing failed", "remote", req.RemoteAddr, "error", err)
		}
		return
	}

	// Log before the method gate; the log's purpose is complete traffic
	// visibility, rejected methods included.
	if s.AccessLog != nil {
		s.AccessLog.LogRequest(reqCtx.ID, req)
	}

	res.Reset()
	res.Protocol = req.Protocol
	res.Headers.Set("X-Request-Id", reqCtx.ID)

	if !methodAllowed(req.Method) {
		res.Status = StatusNotImplemented
		res.ContentType = "text/plain"
		res.Body = []byte("501 Not Implemented")
	} else if err := s.Handler(&reqCtx); err != nil {
		outcome = "handler_error"
		s.recordError(reqCtx.ID, err)
		return
	}

	acceptEncoding, _ := req.Headers.Get("Accept-Encoding")
	res.Compress = ShouldCompress(acceptEncoding, res.ContentType)

	if s.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	if err := res.Write(conn); err != nil {
		outcome = "write_error"
		s.recordError(reqCtx.ID, err)
		return
	}

	outcome = "ok"
}

// Shutdown stops accepting and waits for in-flight connection handlers to
// finish naturally, bounded by ctx. Handlers are never cancelled mid-response.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shuttingDown = true
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) recordError(id string, err error) {
	s.Logger.Error("connection handler error", "request_id", id, "error", err)
	if s.AccessLog != nil {
		s.AccessLog.LogError(id, err)
	}
}

func methodAllowed(method string) bool {
	return strings.EqualFold(method, "GET") || strings.EqualFold(method, "POST")
}

func remoteIP(conn net.Conn) string {
	addr := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// timeoutReader refreshes the read deadline before every read, so a slow
// client can stall a connection for at most one timeout window per read.
type timeoutReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	if r.timeout > 0 {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			return 0, err
		}
	}
	return r.conn.Read(p)
}
