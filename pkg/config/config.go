// Package config reads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/storage"
)

// Config holds everything the apps read from the environment. The zero
// environment reproduces the plain CLI behavior: all four filters, outputs
// in the working directory, no previews, no uploads.
type Config struct {
	Debug     bool
	OutputDir string
	Filters   []string
	Previews  bool

	Storage storage.Config

	HTTPAddr    string
	Namespace   string
	FilterImage string
}

// Load reads Config from the environment.
func Load() Config {
	return Config{
		Debug:     GetEnvBool("DEBUG", false),
		OutputDir: GetEnv("OUTPUT_DIR", "."),
		Filters:   GetEnvList("FILTERS"),
		Previews:  GetEnvBool("PNG_PREVIEW", false),
		Storage: storage.Config{
			Endpoint:  GetEnv("S3_ENDPOINT", ""),
			Region:    GetEnv("S3_REGION", "us-east-1"),
			AccessKey: GetEnv("S3_ACCESS_KEY", ""),
			SecretKey: GetEnv("S3_SECRET_KEY", ""),
			Bucket:    GetEnv("S3_BUCKET", ""),
			Prefix:    GetEnv("S3_PREFIX", ""),
		},
		HTTPAddr:    GetEnv("HTTP_ADDR", ":8080"),
		Namespace:   GetEnv("KUBE_NAMESPACE", "default"),
		FilterImage: GetEnv("FILTER_IMAGE", "ghcr.io/phantominthewire/ppm-filter:latest"),
	}
}

// UploadEnabled reports whether outputs should be pushed to object storage.
func (c Config) UploadEnabled() bool {
	return c.Storage.Bucket != ""
}

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvList splits a comma separated variable, dropping empty entries.
func GetEnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
