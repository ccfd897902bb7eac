package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knn"
	"github.com/hupe1980/knn/blobstore"
	"github.com/hupe1980/knn/dataset"
	"github.com/hupe1980/knn/eval"
	"github.com/hupe1980/knn/resource"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := parseArgs(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, defaultRunConfig(), cfg)
	assert.Equal(t, 5, cfg.K)
	assert.Equal(t, 3, cfg.Classes)
}

func TestParseArgs_ConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k": 7, "classes": 4, "store": "s3://bucket/x", "compression": "zstd"}`), 0o600))

	cfg, err := parseArgs([]string{"-config", path, "-k", "9", "-workers", "2"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.K, "explicit flag wins")
	assert.Equal(t, 4, cfg.Classes, "config file value")
	assert.Equal(t, "s3://bucket/x", cfg.Store)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, dataset.TrainName, cfg.Train, "default survives")
}

func TestParseArgs_Errors(t *testing.T) {
	_, err := parseArgs([]string{"-k", "x"}, io.Discard)
	assert.Error(t, err)

	_, err = parseArgs([]string{"extra"}, io.Discard)
	assert.Error(t, err)

	_, err = parseArgs([]string{"-config", filepath.Join(t.TempDir(), "missing.json")}, io.Discard)
	assert.Error(t, err)

	typo := filepath.Join(t.TempDir(), "typo.json")
	require.NoError(t, os.WriteFile(typo, []byte(`{"kk": 3}`), 0o600))
	_, err = parseArgs([]string{"-config", typo}, io.Discard)
	assert.Error(t, err, "unknown keys are rejected")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(runConfig{LogLevel: "debug", LogJSON: true})
	require.NoError(t, err)
	_, err = newLogger(runConfig{LogLevel: "loud"})
	assert.Error(t, err)
}

func testConfig() runConfig {
	cfg := defaultRunConfig()
	cfg.Generate = true
	cfg.NTrain = 300
	cfg.NTest = 60
	cfg.Dim = 8
	cfg.Workers = 3
	cfg.Validate = true
	cfg.Report = "report.json"
	cfg.Compression = "lz4"
	return cfg
}

func TestRun_GenerateClassifyReport(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	var out bytes.Buffer

	require.NoError(t, run(ctx, testConfig(), store, knn.NoopLogger(), &out))
	assert.Contains(t, out.String(), "classified 60 rows")
	assert.Contains(t, out.String(), "validation passed")
	assert.Contains(t, out.String(), "accuracy")

	loader := dataset.NewLoader(store)
	pred, err := loader.ReadLabels(ctx, "predictions.knnb")
	require.NoError(t, err)
	assert.Len(t, pred, 60)

	set, err := loader.LoadSet(ctx, "", 3)
	require.NoError(t, err)
	ref, err := eval.Reference(set.Train, set.TrainLabels, set.Test, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, dataset.Labels(ref), pred)

	blob, err := store.Open(ctx, "report.json")
	require.NoError(t, err)
	data := make([]byte, blob.Size())
	_, err = blob.ReadAt(ctx, data, 0)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	var summary eval.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 60, summary.Rows)
	assert.Len(t, summary.Classes, 3)
}

func TestRun_LocalStoreCSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.csv"), []byte("# x,label\n0,0\n1,0\n2,1\n3,1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.csv"), []byte("0.4\n2.9\n"), 0o600))

	cfg := defaultRunConfig()
	cfg.Train = "train.csv"
	cfg.TrainLabels = ""
	cfg.Test = "test.csv"
	cfg.TestLabels = ""
	cfg.Out = "pred.csv"
	cfg.K = 3
	cfg.Classes = 2

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, blobstore.NewLocalStore(dir), knn.NoopLogger(), &out))

	data, err := os.ReadFile(filepath.Join(dir, "pred.csv"))
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n", string(data))
}

func TestRun_GenerateLabelledCSV(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	cfg := testConfig()
	cfg.Train = "train.csv"
	cfg.TrainLabels = ""

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, store, knn.NoopLogger(), &out))

	loader := dataset.NewLoader(store)
	train, labels, err := loader.ReadCSV(ctx, "train.csv", true)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dim, train.Dim, "labels are a separate column, not a feature")
	assert.Len(t, labels, cfg.NTrain)
	assert.Equal(t, -1, labels.Check(cfg.Classes))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing data", func(t *testing.T) {
		cfg := defaultRunConfig()
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("bad compression", func(t *testing.T) {
		cfg := testConfig()
		cfg.Compression = "brotli"
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.Error(t, err)
	})

	t.Run("k too large", func(t *testing.T) {
		cfg := testConfig()
		cfg.K = 1000
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.ErrorIs(t, err, knn.ErrInvalidConfig)
	})

	t.Run("report without labels", func(t *testing.T) {
		cfg := testConfig()
		cfg.TestLabels = ""
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.Error(t, err)
	})

	t.Run("generate binary train without labels", func(t *testing.T) {
		cfg := testConfig()
		cfg.TrainLabels = ""
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.ErrorIs(t, err, errMissingTrainLabels)
	})

	t.Run("memory limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.MemoryLimit = 64
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.ErrorIs(t, err, resource.ErrMemoryLimit)

		cfg.FailFast = true
		err = run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.ErrorIs(t, err, resource.ErrBusy)
	})

	t.Run("csv train without labels column", func(t *testing.T) {
		cfg := defaultRunConfig()
		cfg.TrainLabels = ""
		err := run(ctx, cfg, blobstore.NewMemoryStore(), knn.NoopLogger(), io.Discard)
		assert.Error(t, err)
	})
}
