package knn

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knn/dataset"
	"github.com/hupe1980/knn/distance"
	"github.com/hupe1980/knn/queue"
	"github.com/hupe1980/knn/resource"
	"github.com/hupe1980/knn/vote"
)

// Config holds the constants of a classification.
type Config struct {
	// K is the number of neighbors consulted per prediction.
	K int `json:"k"`
	// Classes is the number of distinct labels; labels lie in [0, Classes).
	Classes int `json:"classes"`
	// Dim is the feature dimensionality. 0 infers it from the training matrix.
	Dim int `json:"dim"`
}

// DefaultConfig returns the benchmark configuration: K=5, 3 classes, 16 features.
func DefaultConfig() Config {
	return Config{
		K:       5,
		Classes: 3,
		Dim:     16,
	}
}

// Validate checks the configuration constants.
func (c Config) Validate() error {
	if c.K < 1 {
		return ErrInvalidK
	}
	if c.Classes < 1 {
		return ErrInvalidClasses
	}
	if c.Dim < 0 {
		return ErrInvalidDimension
	}
	return nil
}

// Classifier is a brute-force k-nearest-neighbor classifier.
// It is immutable after New and safe for concurrent use.
type Classifier struct {
	cfg  Config
	opts options
}

// New creates a Classifier.
func New(cfg Config, optFns ...Option) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		cfg:  cfg,
		opts: applyOptions(optFns),
	}, nil
}

// Config returns the classifier's configuration.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Model is a classifier bound to a training set.
//
// The model borrows the training matrix and labels; callers must not modify
// them while the model is in use. A Model is safe for concurrent use.
type Model struct {
	c      *Classifier
	train  dataset.Matrix
	labels dataset.Labels
	dim    int
}

// Fit validates the training data and returns a Model over it.
func (c *Classifier) Fit(train dataset.Matrix, labels dataset.Labels) (*Model, error) {
	start := time.Now()
	m, err := c.fit(train, labels)
	c.opts.metricsCollector.RecordFit(time.Since(start), err)
	c.opts.logger.LogFit(context.Background(), train.Rows, train.Dim, err)
	return m, err
}

func (c *Classifier) fit(train dataset.Matrix, labels dataset.Labels) (*Model, error) {
	if err := train.Validate(); err != nil {
		return nil, fmt.Errorf("%w: train: %w", ErrInvalidConfig, err)
	}
	if len(labels) != train.Rows {
		return nil, &ErrLabelCountMismatch{Rows: train.Rows, Labels: len(labels)}
	}
	if c.cfg.K > train.Rows {
		return nil, &ErrTooFewTrainingPoints{K: c.cfg.K, N: train.Rows}
	}
	if c.cfg.Dim > 0 && train.Dim != c.cfg.Dim {
		return nil, &ErrDimensionMismatch{Expected: c.cfg.Dim, Actual: train.Dim}
	}
	if i := labels.Check(c.cfg.Classes); i >= 0 {
		return nil, &ErrLabelOutOfRange{Index: i, Label: labels[i], Classes: c.cfg.Classes}
	}

	return &Model{
		c:      c,
		train:  train,
		labels: labels,
		dim:    train.Dim,
	}, nil
}

// Classify fits a model on train and predicts a label for every test row.
func (c *Classifier) Classify(ctx context.Context, train dataset.Matrix, labels dataset.Labels, test dataset.Matrix) ([]int, error) {
	m, err := c.Fit(train, labels)
	if err != nil {
		return nil, err
	}
	return m.Predict(ctx, test)
}

// Dim returns the feature dimensionality of the model.
func (m *Model) Dim() int {
	return m.dim
}

// Predict returns the majority label of the K nearest training points for
// every test row, in test row order.
func (m *Model) Predict(ctx context.Context, test dataset.Matrix) ([]int, error) {
	var out []int
	perRow := int64(unsafe.Sizeof(0))

	err := m.run(ctx, test, perRow, func(rows int) {
		out = make([]int, rows)
	}, func(row int, q *queue.TopK, t vote.Tally) {
		t.Reset()
		t.Count(q.Items())
		out[row] = t.Winner()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// KNeighbors returns the final neighbor queue of every test row, sorted by
// ascending distance with ties in training order.
func (m *Model) KNeighbors(ctx context.Context, test dataset.Matrix) ([][]queue.Neighbor, error) {
	k := m.c.cfg.K
	var (
		out     [][]queue.Neighbor
		backing []queue.Neighbor
	)
	perRow := int64(k) * int64(unsafe.Sizeof(queue.Neighbor{}))

	err := m.run(ctx, test, perRow, func(rows int) {
		out = make([][]queue.Neighbor, rows)
		backing = make([]queue.Neighbor, rows*k)
	}, func(row int, q *queue.TopK, _ vote.Tally) {
		dst := backing[row*k : (row+1)*k : (row+1)*k]
		copy(dst, q.Items())
		out[row] = dst
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictOne classifies a single feature vector on the calling goroutine.
func (m *Model) PredictOne(x []float64) (int, error) {
	if len(x) != m.dim {
		return 0, &ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
	}
	q := queue.New(m.c.cfg.K)
	m.nearest(q, x)
	return vote.Majority(q.Items(), m.c.cfg.Classes), nil
}

// nearest fills q with the K nearest training points to x. Training points
// are visited in row order; the first K fill the queue and the rest stream
// through it.
func (m *Model) nearest(q *queue.TopK, x []float64) {
	q.Reset()
	for i := range m.train.Rows {
		q.Push(queue.Neighbor{
			Distance: distance.Euclidean(x, m.train.Row(i)),
			Label:    m.labels[i],
		})
	}
}

func (c *Classifier) acquireRun(ctx context.Context) error {
	rc := c.opts.resourceController
	if !c.opts.failFast {
		return rc.AcquireRun(ctx)
	}
	if !rc.TryAcquireRun() {
		return fmt.Errorf("%w: no run slot available", resource.ErrBusy)
	}
	return nil
}

func (c *Classifier) acquireMemory(ctx context.Context, bytes int64) error {
	rc := c.opts.resourceController
	if !c.opts.failFast {
		return rc.AcquireMemory(ctx, bytes)
	}
	if !rc.TryAcquireMemory(bytes) {
		return fmt.Errorf("%w: %d bytes of classification buffers", resource.ErrBusy, bytes)
	}
	return nil
}

// worker is the state owned by one goroutine of a run.
type worker struct {
	q *queue.TopK
	t vote.Tally
}

// run maps visit over the test rows in contiguous chunks. At most
// opts.workers chunks are processed concurrently and each one holds a
// worker exclusively, so no queue or tally is shared between goroutines.
//
// alloc sizes the caller's output once test has been validated and perRow
// bytes per row have been reserved. visit must only write state owned by
// its row.
func (m *Model) run(ctx context.Context, test dataset.Matrix, perRow int64, alloc func(rows int), visit func(row int, q *queue.TopK, t vote.Tally)) (err error) {
	start := time.Now()
	workers := max(min(m.c.opts.workers, test.Rows), 1)
	logger := m.c.opts.logger.WithRunID(uuid.NewString())

	defer func() {
		m.c.opts.metricsCollector.RecordClassify(test.Rows, time.Since(start), err)
		logger.LogClassify(ctx, test.Rows, workers, time.Since(start), err)
	}()

	if err := test.Validate(); err != nil {
		return fmt.Errorf("%w: test: %w", ErrInvalidConfig, err)
	}
	if test.Rows > 0 && test.Dim != m.dim {
		return &ErrDimensionMismatch{Expected: m.dim, Actual: test.Dim}
	}
	if test.Rows == 0 {
		alloc(0)
		return nil
	}

	k := m.c.cfg.K
	rc := m.c.opts.resourceController
	if err := m.c.acquireRun(ctx); err != nil {
		return err
	}
	defer rc.ReleaseRun()

	reserve := perRow*int64(test.Rows) + int64(workers*k)*int64(unsafe.Sizeof(queue.Neighbor{}))
	if err := m.c.acquireMemory(ctx, reserve); err != nil {
		return err
	}
	defer rc.ReleaseMemory(reserve)
	alloc(test.Rows)

	// One strided buffer; worker w owns entries [w*k, (w+1)*k).
	buf := make([]queue.Neighbor, workers*k)
	pool := make(chan *worker, workers)
	for w := range workers {
		pool <- &worker{
			q: queue.NewWithBuffer(buf[w*k : (w+1)*k : (w+1)*k]),
			t: vote.NewTally(m.c.cfg.Classes),
		}
	}

	chunk := m.c.opts.chunkSize
	if chunk < 1 {
		chunk = max((test.Rows+workers*4-1)/(workers*4), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	next := 0
	for next < test.Rows && gctx.Err() == nil {
		lo, hi := next, min(next+chunk, test.Rows)
		next = hi

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := <-pool
			defer func() { pool <- w }()

			for row := lo; row < hi; row++ {
				m.nearest(w.q, test.Row(row))
				visit(row, w.q, w.t)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if next < test.Rows {
		return ctx.Err()
	}
	return nil
}
