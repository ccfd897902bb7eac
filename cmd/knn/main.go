// Command knn classifies a test set with brute-force k-nearest neighbors.
//
// Datasets are read from and predictions written to a blob store: a local
// directory, memory, S3 or MinIO. With -generate a seeded synthetic dataset is
// written to the store first.
//
//	knn -store ./data -generate -n-train 4096 -n-test 1024 -validate -report report.json
//	knn -store s3://bucket/runs/a -train train.knnb -train-labels train_labels.knnb -test test.knnb
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/knn"
	"github.com/hupe1980/knn/blobstore"
	"github.com/hupe1980/knn/codec"
	"github.com/hupe1980/knn/dataset"
	"github.com/hupe1980/knn/eval"
	"github.com/hupe1980/knn/resource"
)

// runConfig is the complete configuration of one invocation. It can be read
// from a JSON file with -config; flags given explicitly take precedence.
type runConfig struct {
	Config string `json:"-"`

	Store       string `json:"store"`
	Train       string `json:"train"`
	TrainLabels string `json:"train_labels"`
	Test        string `json:"test"`
	TestLabels  string `json:"test_labels"`
	Out         string `json:"out"`

	K       int `json:"k"`
	Classes int `json:"classes"`
	Dim     int `json:"dim"`
	Workers int `json:"workers"`

	Generate    bool   `json:"generate"`
	NTrain      int    `json:"n_train"`
	NTest       int    `json:"n_test"`
	Seed        int64  `json:"seed"`
	Compression string `json:"compression"`

	Validate bool   `json:"validate"`
	Report   string `json:"report"`

	MemoryLimit int64 `json:"memory_limit"`
	IOLimit     int64 `json:"io_limit"`
	FailFast    bool  `json:"fail_fast"`

	LogLevel string `json:"log_level"`
	LogJSON  bool   `json:"log_json"`
}

func defaultRunConfig() runConfig {
	def := knn.DefaultConfig()
	gen := dataset.DefaultGenerateConfig()
	return runConfig{
		Store:       "mem://",
		Train:       dataset.TrainName,
		TrainLabels: dataset.TrainLabelsName,
		Test:        dataset.TestName,
		TestLabels:  dataset.TestLabelsName,
		Out:         "predictions.knnb",
		K:           def.K,
		Classes:     def.Classes,
		NTrain:      gen.Train,
		NTest:       gen.Test,
		Dim:         gen.Dim,
		Seed:        gen.Seed,
		Compression: dataset.CompressionNone.String(),
		LogLevel:    "info",
	}
}

func newFlagSet(cfg *runConfig, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("knn", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Config, "config", cfg.Config, "JSON configuration file (flags override it)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "blob store: mem://, file://dir, dir, s3://bucket/prefix, minio://endpoint/bucket/prefix")
	fs.StringVar(&cfg.Train, "train", cfg.Train, "training matrix blob (.knnb or .csv)")
	fs.StringVar(&cfg.TrainLabels, "train-labels", cfg.TrainLabels, "training labels blob; empty reads labels from the last column of a -train csv")
	fs.StringVar(&cfg.Test, "test", cfg.Test, "test matrix blob (.knnb or .csv)")
	fs.StringVar(&cfg.TestLabels, "test-labels", cfg.TestLabels, "true test labels for -report; optional")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "predictions blob")
	fs.IntVar(&cfg.K, "k", cfg.K, "number of neighbors")
	fs.IntVar(&cfg.Classes, "classes", cfg.Classes, "number of classes")
	fs.IntVar(&cfg.Dim, "dim", cfg.Dim, "feature dimension of generated data")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "classification goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.Generate, "generate", cfg.Generate, "generate a synthetic dataset into the store first")
	fs.IntVar(&cfg.NTrain, "n-train", cfg.NTrain, "generated training rows")
	fs.IntVar(&cfg.NTest, "n-test", cfg.NTest, "generated test rows")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	fs.StringVar(&cfg.Compression, "compression", cfg.Compression, "compression of written blobs: none, lz4, zstd")
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "cross-check predictions against the reference classifier")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "write a JSON evaluation report blob (needs -test-labels)")
	fs.Int64Var(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "classification buffer limit in bytes (0 = unlimited)")
	fs.Int64Var(&cfg.IOLimit, "io-limit", cfg.IOLimit, "read throughput limit in bytes/s (0 = unlimited)")
	fs.BoolVar(&cfg.FailFast, "fail-fast", cfg.FailFast, "fail instead of waiting when the memory limit is reached")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	return fs
}

// parseArgs resolves defaults, the optional -config file and flags, in that order.
func parseArgs(args []string, output io.Writer) (runConfig, error) {
	cfg := defaultRunConfig()
	fs := newFlagSet(&cfg, output)
	if err := fs.Parse(args); err != nil {
		return runConfig{}, err
	}
	if fs.NArg() > 0 {
		return runConfig{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.Config == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(cfg.Config)
	if err != nil {
		return runConfig{}, err
	}
	merged := defaultRunConfig()
	if err := codec.Default.UnmarshalStrict(data, &merged); err != nil {
		return runConfig{}, fmt.Errorf("config %s: %w", cfg.Config, err)
	}

	overrides := newFlagSet(&merged, output)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if err := overrides.Set(f.Name, f.Value.String()); err != nil && setErr == nil {
			setErr = err
		}
	})
	return merged, setErr
}

func newLogger(cfg runConfig) (*knn.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}
	if cfg.LogJSON {
		return knn.NewJSONLogger(level), nil
	}
	return knn.NewTextLogger(level), nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, store, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the shared state of one run.
type app struct {
	cfg         runConfig
	store       blobstore.BlobStore
	loader      *dataset.Loader
	logger      *knn.Logger
	metrics     *knn.BasicMetricsCollector
	rc          *resource.Controller
	compression dataset.Compression
}

func run(ctx context.Context, cfg runConfig, store blobstore.BlobStore, logger *knn.Logger, stdout io.Writer) error {
	compression, err := dataset.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.MemoryLimit,
		IOLimitBytesPerSec: cfg.IOLimit,
	})
	a := &app{
		cfg:         cfg,
		store:       store,
		loader:      dataset.NewLoader(store, dataset.WithResourceController(rc)),
		logger:      logger,
		metrics:     &knn.BasicMetricsCollector{},
		rc:          rc,
		compression: compression,
	}

	if cfg.Generate {
		if err := a.generate(ctx); err != nil {
			return err
		}
	}

	train, trainLabels, err := a.loadTrain(ctx)
	if err != nil {
		return err
	}
	test, err := a.loadMatrix(ctx, cfg.Test)
	if err != nil {
		return err
	}

	clf, err := knn.New(knn.Config{K: cfg.K, Classes: cfg.Classes},
		knn.WithWorkers(cfg.Workers),
		knn.WithLogger(logger),
		knn.WithMetricsCollector(a.metrics),
		knn.WithResourceController(rc),
		knn.WithFailFast(cfg.FailFast),
	)
	if err != nil {
		return err
	}

	model, err := clf.Fit(train, trainLabels)
	if err != nil {
		return err
	}
	pred, err := model.Predict(ctx, test)
	if err != nil {
		return err
	}

	if err := a.loader.WriteLabels(ctx, cfg.Out, pred, compression); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "classified %d rows (k=%d, classes=%d, dim=%d) -> %s\n", len(pred), cfg.K, cfg.Classes, model.Dim(), cfg.Out)

	if cfg.Validate {
		if err := a.validate(ctx, train, trainLabels, test, pred); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "validation passed")
	}

	if cfg.Report != "" {
		report, err := a.report(ctx, pred)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "accuracy %.4f (%d/%d) -> %s\n", report.Accuracy, report.Correct, report.Rows, cfg.Report)
	}

	stats := a.metrics.GetStats()
	logger.DebugContext(ctx, "run metrics",
		"loaded_bytes", stats.LoadBytes,
		"classified_rows", stats.ClassifyRows,
		"classify_avg", time.Duration(stats.ClassifyAvgNanos),
	)
	return nil
}

var errMissingTrainLabels = errors.New("-train-labels is required unless -train is a labelled csv")

func (a *app) generate(ctx context.Context) error {
	set, err := dataset.Generate(dataset.GenerateConfig{
		Train:   a.cfg.NTrain,
		Test:    a.cfg.NTest,
		Dim:     a.cfg.Dim,
		Classes: a.cfg.Classes,
		Seed:    a.cfg.Seed,
	})
	if err != nil {
		return err
	}

	// Without a separate labels blob the training labels travel as the
	// trailing CSV column, which is how loadTrain reads them back.
	switch {
	case a.cfg.TrainLabels != "":
		if err := a.loader.WriteMatrix(ctx, a.cfg.Train, set.Train, a.compression); err != nil {
			return err
		}
		if err := a.loader.WriteLabels(ctx, a.cfg.TrainLabels, set.TrainLabels, a.compression); err != nil {
			return err
		}
	case dataset.IsCSV(a.cfg.Train):
		if err := a.loader.WriteLabelledCSV(ctx, a.cfg.Train, set.Train, set.TrainLabels); err != nil {
			return err
		}
	default:
		return errMissingTrainLabels
	}
	if err := a.loader.WriteMatrix(ctx, a.cfg.Test, set.Test, a.compression); err != nil {
		return err
	}
	if a.cfg.TestLabels != "" {
		if err := a.loader.WriteLabels(ctx, a.cfg.TestLabels, set.TestLabels, a.compression); err != nil {
			return err
		}
	}

	a.logger.InfoContext(ctx, "dataset generated",
		"train", set.Train.Rows,
		"test", set.Test.Rows,
		"dimension", a.cfg.Dim,
		"seed", a.cfg.Seed,
		"compression", a.compression.String(),
	)
	return nil
}

func (a *app) loadTrain(ctx context.Context) (dataset.Matrix, dataset.Labels, error) {
	if a.cfg.TrainLabels == "" {
		if !dataset.IsCSV(a.cfg.Train) {
			return dataset.Matrix{}, nil, errMissingTrainLabels
		}
		start := time.Now()
		m, labels, err := a.loader.ReadCSV(ctx, a.cfg.Train, true)
		a.metrics.RecordLoad(m.SizeBytes(), time.Since(start), err)
		a.logger.LogLoad(ctx, a.cfg.Train, m.Rows, m.Dim, err)
		return m, labels, err
	}

	m, err := a.loadMatrix(ctx, a.cfg.Train)
	if err != nil {
		return dataset.Matrix{}, nil, err
	}
	labels, err := a.loadLabels(ctx, a.cfg.TrainLabels)
	if err != nil {
		return dataset.Matrix{}, nil, err
	}
	return m, labels, nil
}

func (a *app) loadMatrix(ctx context.Context, name string) (dataset.Matrix, error) {
	start := time.Now()
	m, err := a.loader.ReadMatrix(ctx, name)
	a.metrics.RecordLoad(m.SizeBytes(), time.Since(start), err)
	a.logger.LogLoad(ctx, name, m.Rows, m.Dim, err)
	return m, err
}

func (a *app) loadLabels(ctx context.Context, name string) (dataset.Labels, error) {
	start := time.Now()
	labels, err := a.loader.ReadLabels(ctx, name)
	a.metrics.RecordLoad(int64(len(labels))*8, time.Since(start), err)
	a.logger.LogLoad(ctx, name, len(labels), 1, err)
	return labels, err
}

func (a *app) validate(ctx context.Context, train dataset.Matrix, labels dataset.Labels, test dataset.Matrix, pred []int) error {
	ref, err := eval.Reference(train, labels, test, a.cfg.K, a.cfg.Classes)
	if err == nil {
		err = eval.Validate(ref, pred)
	}
	a.logger.LogValidate(ctx, len(pred), err)
	return err
}

func (a *app) report(ctx context.Context, pred []int) (*eval.Report, error) {
	if a.cfg.TestLabels == "" {
		return nil, errors.New("-report needs -test-labels")
	}
	truth, err := a.loadLabels(ctx, a.cfg.TestLabels)
	if err != nil {
		return nil, err
	}

	report, err := eval.Evaluate(truth, pred, a.cfg.Classes)
	if err != nil {
		return nil, err
	}

	data, err := codec.Default.MarshalIndent(report.Summary(), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := a.store.Put(ctx, a.cfg.Report, data); err != nil {
		return nil, err
	}
	return report, nil
}
