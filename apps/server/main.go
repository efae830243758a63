package main

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/config"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/logging"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/server"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Debug)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server: %v", err)
	}
}
