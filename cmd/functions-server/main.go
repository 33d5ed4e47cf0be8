// Command functions-server hosts the built-in functions over HTTP so
// agents can reach them remotely. It serves one endpoint per registered
// function plus health and metrics routes, and shuts down gracefully on
// SIGINT or SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	skybrief "github.com/skybrief/skybrief-golang"
	"github.com/skybrief/skybrief-golang/internal/toolserver"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()

	cfg, err := toolserver.LoadConfig()
	if err != nil {
		log.WithError(err).Error("load config")
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	server := toolserver.New(cfg, log, skybrief.NewDefaultRegistry())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server stopped")
			os.Exit(1)
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
			os.Exit(1)
		}
	}
}
