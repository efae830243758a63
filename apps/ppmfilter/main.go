package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/config"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/logging"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/pipeline"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.ppm | s3://bucket/key>\n", os.Args[0])
		os.Exit(1)
	}
	inPath := os.Args[1]

	cfg := config.Load()
	logger := logging.New(cfg.Debug)

	jobs, err := filter.JobsFor(cfg.Filters)
	if err != nil {
		logger.Fatalf("invalid FILTERS: %v", err)
	}

	if bucket, key, ok := storage.ParseURI(inPath); ok {
		local, cleanup, err := fetchInput(cfg.Storage, bucket, key, logger)
		if err != nil {
			logger.Fatalf("failed to fetch input image: %v", err)
		}
		defer cleanup()
		logrus.DeferExitHandler(cleanup)
		inPath = local
	}

	report, err := pipeline.RunFile(inPath, jobs, pipeline.Options{
		OutputDir: cfg.OutputDir,
		Previews:  cfg.Previews,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatalf("failed to load input image: %v", err)
	}

	for _, res := range report.Results {
		if res.Err == nil {
			fmt.Printf("successfully wrote to %s\n", res.Path)
		}
	}
	fmt.Printf("Runtime = %v\n", report.Elapsed)

	if cfg.UploadEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		client, err := storage.New(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatalf("failed to configure storage: %v", err)
		}
		if err := client.UploadAll(ctx, report.Written()); err != nil {
			logger.Fatalf("failed to upload outputs: %v", err)
		}
	}

	if err := report.Err(); err != nil {
		logger.Fatalf("failed to write outputs: %v", err)
	}
}

// fetchInput downloads bucket/key into a temporary directory, using the
// configured endpoint and credentials.
func fetchInput(cfg storage.Config, bucket, key string, logger *logrus.Logger) (string, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg.Bucket = bucket
	client, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return "", nil, err
	}

	tmpDir, err := os.MkdirTemp("", "ppmfilter-input")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	local, err := client.Fetch(ctx, key, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, err
	}
	return local, func() { os.RemoveAll(tmpDir) }, nil
}
