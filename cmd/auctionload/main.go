package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auction-etl/config"
	"auction-etl/ingest"
	"auction-etl/parser"
	"auction-etl/pipeline"
)

func main() {
	// Optional .env in the working directory; absence is not an error.
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.OutputDir
	if value, ok := config.EnvString("ETL_OUTPUT_DIR"); ok {
		outputDefault = value
	}
	formatDefault := defaultCfg.Format
	if value, ok := config.EnvString("ETL_FORMAT"); ok {
		formatDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("ETL_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	cacheDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("ETL_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid ETL_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheDefault = value
	}

	outputDir := flag.String("out", outputDefault, "Output directory for table files")
	format := flag.String("format", formatDefault, "Output format: dat, csv, or dual")
	delimiter := flag.String("delimiter", defaultCfg.Delimiter, "Column separator for .dat output")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "Timeout for remote document fetches")
	cacheSize := flag.Int("cache-size", cacheDefault, "Timestamp normalization cache size")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.json|url> ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.OutputDir = *outputDir
	cfg.Format = strings.ToLower(*format)
	cfg.Delimiter = *delimiter
	cfg.Timeout = *timeout
	cfg.CacheSize = *cacheSize
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	reader := ingest.NewReader(cfg)
	extractor, err := parser.NewExtractor(cfg.CacheSize)
	if err != nil {
		slog.Error("initialising extractor", slog.Any("error", err))
		os.Exit(1)
	}
	accumulator := pipeline.NewAccumulator()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reader.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting transform",
		slog.String("inputs", ingest.Describe(args)),
		slog.String("out", cfg.OutputDir),
		slog.String("format", cfg.Format),
	)

	startTime := time.Now()
	parsed := 0
	for _, arg := range args {
		if !ingest.IsURL(arg) && !ingest.IsJSON(arg) {
			slog.Debug("skipping non-json argument", slog.String("arg", arg))
			continue
		}

		records, err := reader.Load(arg)
		if err != nil {
			slog.Error("loading input", slog.String("input", arg), slog.Any("error", err))
			os.Exit(1)
		}

		for i := range records {
			batch, err := extractor.Extract(&records[i])
			if err != nil {
				slog.Error("extracting record", slog.String("input", arg), slog.Any("error", err))
				os.Exit(1)
			}
			accumulator.Merge(batch)
		}

		parsed++
		slog.Info("input processed", slog.String("input", arg), slog.Int("items", len(records)))
	}

	writer, err := createWriter(cfg)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}

	if err := writer.Write(accumulator.Snapshot()); err != nil {
		writer.Close()
		slog.Error("writing tables", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		slog.Error("closing writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(parsed, accumulator, time.Since(startTime), cfg.OutputDir)
}

func createWriter(cfg *config.Config) (pipeline.OutputWriter, error) {
	switch cfg.Format {
	case "dat":
		return pipeline.NewDatWriter(cfg.OutputDir, cfg.Delimiter)
	case "csv":
		return pipeline.NewCSVWriter(cfg.OutputDir)
	case "dual":
		return pipeline.NewDualWriter(cfg.OutputDir, cfg.Delimiter)
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

func printSummary(parsed int, accumulator *pipeline.Accumulator, duration time.Duration, outputDir string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Transform complete")

	counts := accumulator.Counts()
	fmt.Printf("  Documents:        %d\n", parsed)
	fmt.Printf("  Users:            %d\n", counts["users"])
	fmt.Printf("  Items:            %d\n", counts["items"])
	fmt.Printf("  Item categories:  %d\n", counts["item_categories"])
	fmt.Printf("  Bids:             %d\n", counts["bids"])

	metrics := accumulator.GetMetrics()
	if duplicates, ok := metrics["duplicates"].(map[string]int); ok && len(duplicates) > 0 {
		fmt.Printf("  Duplicates:       %v\n", duplicates)
	}
	fmt.Printf("  Duration:         %v\n", duration)
	fmt.Printf("  Output directory: %s\n", outputDir)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
