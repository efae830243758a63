package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/config"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/logging"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/pipeline"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"
)

var (
	sharedDir = config.GetEnv("SHARED_DIR", "../../shared")
	inputDir  = filepath.Join(sharedDir, "input")
	outputDir = filepath.Join(sharedDir, "output")
	repeats   = config.GetEnvInt("BENCH_REPEATS", 5)

	logger = logging.New(config.GetEnvBool("DEBUG", false))
)

func checkErr(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func isInput(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".ppm", ".png":
		return true
	}
	return false
}

func load(file string) (*ppm.Image, error) {
	if strings.EqualFold(filepath.Ext(file), ".ppm") {
		return ppm.ReadFile(file)
	}
	src, err := imaging.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	return ppm.FromImage(src), nil
}

func main() {
	checkErr(os.RemoveAll(outputDir))
	checkErr(os.MkdirAll(outputDir, 0o755))
	if repeats < 1 {
		repeats = 1
	}

	var inputs []string
	checkErr(filepath.Walk(inputDir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && isInput(p) {
			inputs = append(inputs, p)
		}
		return nil
	}))
	if len(inputs) == 0 {
		fmt.Printf("No PPM or PNG files in %s\n", inputDir)
		return
	}

	fmt.Printf("Found %d images, %d runs each\n", len(inputs), repeats)

	for _, file := range inputs {
		benchImage(file)
	}

	fmt.Println("Done")
}

func benchImage(file string) {
	fmt.Printf("→ %s\n", file)
	im, err := load(file)
	checkErr(err)

	dir := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))
	checkErr(os.MkdirAll(dir, 0o755))

	var total, fastest time.Duration
	for i := 0; i < repeats; i++ {
		start := time.Now()
		results := pipeline.Run(im, filter.DefaultJobs(), pipeline.Options{OutputDir: dir, Logger: logger})
		elapsed := time.Since(start)

		report := pipeline.Report{Results: results, Elapsed: elapsed}
		checkErr(report.Err())

		total += elapsed
		if i == 0 || elapsed < fastest {
			fastest = elapsed
		}
		logger.WithFields(logrus.Fields{"run": i + 1, "elapsed": elapsed}).Debug("run complete")
	}

	px, _, _ := im.Pixels()
	fmt.Printf("Saved %s (%d pixels) min=%v avg=%v\n", dir, len(px), fastest, total/time.Duration(repeats))
}
