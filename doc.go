// Package knn provides brute-force k-nearest-neighbor classification.
//
// For every test point the classifier computes the Euclidean distance to
// every training point, keeps the K closest in a bounded sorted queue and
// predicts the majority label among them.
//
// # Quick Start
//
//	clf, _ := knn.New(knn.Config{K: 5, Classes: 3})
//	model, _ := clf.Fit(train, labels)
//	pred, _ := model.Predict(ctx, test)
//
// or in one call:
//
//	pred, _ := clf.Classify(ctx, train, labels, test)
//
// # Determinism
//
// Test rows are classified independently and in parallel. Each worker
// goroutine owns one neighbor queue and one vote tally, and every row writes
// only its own output slot, so predictions are bit-for-bit identical for any
// worker count or scheduling order.
//
// Equal distances keep training order: a later training point only displaces
// a queued neighbor if it is strictly closer. NaN distances never displace a
// neighbor. Vote ties resolve to the smallest label.
//
// # Errors
//
// Every problem with the configuration or the input shapes is reported before
// any distance is computed and matches ErrInvalidConfig:
//
//	if errors.Is(err, knn.ErrInvalidConfig) { ... }
//
// Training labels outside [0, Classes) are reported by Fit as
// *ErrLabelOutOfRange. Cancellation of the context passed to Predict is
// observed between chunks of test rows; a canceled run returns no predictions.
package knn
