package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bunicodea/gohttpd/accesslog"
	"github.com/bunicodea/gohttpd/config"
	"github.com/bunicodea/gohttpd/filesystem"
	"github.com/bunicodea/gohttpd/http"
	"github.com/bunicodea/gohttpd/static"
	"github.com/bunicodea/gohttpd/telemetry"
)

const (
	serviceName     = "gohttpd"
	logDirectory    = "logs"
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	if err := run(context.Background(), *configPath); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	tel, err := telemetry.Setup(ctx, serviceName)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.Background())

	logger := tel.Logger
	slog.SetDefault(logger)

	cfg := config.Load(configPath, logger)

	fs := filesystem.NewLocalFileSystem()
	if err := fs.CreateDirectory(cfg.ContentRoot); err != nil {
		return err
	}
	if err := fs.CreateDirectory(logDirectory); err != nil {
		return err
	}

	handler, err := static.NewHandler(cfg.ContentRoot, fs, logger)
	if err != nil {
		return err
	}

	server := http.NewServer(serviceName, handler.Serve)
	server.Logger = logger
	server.AccessLog = accesslog.New(logDirectory, fs)

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "root", cfg.ContentRoot)
		serverErrCh <- server.ListenAndServe(ctx, cfg.Addr())
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
