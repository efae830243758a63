package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/config"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/kube"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/logging"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/storage"
)

// rasterPath returns a text raster for imagePath, converting other image
// formats into a temporary .ppm file.
func rasterPath(imagePath string) (path string, cleanup func(), err error) {
	if strings.EqualFold(filepath.Ext(imagePath), ".ppm") {
		return imagePath, func() {}, nil
	}

	src, err := imaging.Open(imagePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open input image: %w", err)
	}
	im := ppm.FromImage(src)
	px, _, _ := im.Pixels()

	tmpDir, err := os.MkdirTemp("", "ppm-controller")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	path = filepath.Join(tmpDir, base+".ppm")
	if err := os.WriteFile(path, ppm.Encode(im, px), 0o644); err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to write raster: %w", err)
	}
	return path, func() { os.RemoveAll(tmpDir) }, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: controller <image-path>")
		os.Exit(1)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Debug)
	if !cfg.UploadEnabled() {
		logger.Fatal("S3_BUCKET must be set")
	}

	jobs, err := filter.JobsFor(cfg.Filters)
	if err != nil {
		logger.Fatalf("invalid FILTERS: %v", err)
	}

	input, cleanup, err := rasterPath(os.Args[1])
	if err != nil {
		logger.Fatal(err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("failed to configure storage: %v", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		logger.Fatalf("failed to prepare bucket: %v", err)
	}
	key, err := client.Upload(ctx, input)
	if err != nil {
		logger.Fatalf("failed to upload input to MinIO: %v", err)
	}

	clientset, err := kube.NewClientset()
	if err != nil {
		logger.Fatal(err)
	}

	outputURL := cfg.Storage.ObjectURL(cfg.Storage.Key("processed"))
	for _, job := range jobs {
		spec := kube.FilterJob{
			Name:      kube.JobName(input, job.Kind, time.Now()),
			Namespace: cfg.Namespace,
			Image:     cfg.FilterImage,
			Kind:      job.Kind,
			InputURL:  cfg.Storage.ObjectURL(key),
			OutputURL: outputURL,
		}
		entry := logger.WithFields(logrus.Fields{"job": spec.Name, "filter": job.Kind.String()})
		if err := kube.CreateJob(ctx, clientset, spec); err != nil {
			entry.WithError(err).Error("Failed to create job")
		} else {
			entry.Info("Job created")
		}
	}
}
