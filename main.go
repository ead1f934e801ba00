package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/youtube"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env-file", "", "path to a .env file (default .env)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, logCloser, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	defer logCloser.Close()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Server exited with error")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := youtube.New(youtube.Config{
		BaseURL:           cfg.YouTube.BaseURL,
		Timeout:           cfg.YouTube.Timeout,
		AcceptLanguage:    cfg.YouTube.AcceptLanguage,
		UserAgent:         cfg.YouTube.UserAgent,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		Logger:            log,
	})
	if err != nil {
		return errors.Wrap(err, "initialize youtube client")
	}

	svcOpts := []transcription.Option{
		transcription.WithLogger(log),
		transcription.WithDefaultLanguage(cfg.DefaultLanguage),
		transcription.WithSideEffectTimeout(cfg.SideEffectTimeout),
	}
	var serverOpts []handlers.ServerOption

	if cfg.Journal.Path != "" {
		journal, err := db.Open(cfg.Journal.Path)
		if err != nil {
			return errors.Wrap(err, "open lookup journal")
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.WithError(err).Error("Failed to close lookup journal")
			}
		}()
		svcOpts = append(svcOpts, transcription.WithJournal(journal))
		serverOpts = append(serverOpts, handlers.WithLookups(journal))
		log.WithField("path", cfg.Journal.Path).Info("Lookup journal enabled")
	}

	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewSpacesClient(ctx, storage.SpacesConfig{
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
			Prefix:    cfg.Archive.Prefix,
		})
		if err != nil {
			return errors.Wrap(err, "initialize transcript archive")
		}
		svcOpts = append(svcOpts, transcription.WithArchive(archive))
		log.WithField("bucket", cfg.Archive.Bucket).Info("Transcript archive enabled")
	}

	service := transcription.NewService(provider, svcOpts...)
	server := handlers.NewServer(cfg, service, append(serverOpts, handlers.WithLogger(log))...)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("Server stopped")
	return nil
}
