// Command galprof renders a surface-brightness model described in a
// YAML file to a FITS, PNG or TIFF image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/galprof/galprof"
)

func main() {
	var (
		config   = flag.String("config", "", "model description file (YAML)")
		output   = flag.String("output", "model.fits", "output image: .fits, .png or .tiff")
		threads  = flag.Int("threads", 0, "worker threads (0 = all CPUs)")
		convType = flag.String("convolver", "", "override the convolver type (brute, fft, accel)")
		verbose  = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *verbose {
		galprof.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if *config == "" {
		log.Fatalf("no model description; use -config model.yaml")
	}

	cfg, err := loadConfig(*config)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *config, err)
	}
	if *threads != 0 {
		cfg.Threads = *threads
	}
	if *convType != "" {
		cfg.Convolver.Type = *convType
	}

	model, err := cfg.build()
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	start := time.Now()
	res, err := model.Evaluate(context.Background())
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if err := writeImage(*output, res, cfg); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Model saved to %s (%dx%d, total flux %.6g, %v)\n",
		*output, res.Image.Width(), res.Image.Height(), res.Image.Total(),
		time.Since(start).Round(time.Millisecond))
}

// writeImage picks the output writer from the file extension.
func writeImage(path string, res *galprof.Result, cfg *modelConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit":
		return writeFITS(f, res, cfg)
	case ".png":
		return writePNG(f, res.Image)
	case ".tiff", ".tif":
		return writeTIFF(f, res.Image)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}
