package knn_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/knn"
	"github.com/hupe1980/knn/dataset"
	"github.com/hupe1980/knn/eval"
)

// Example_classify classifies a single point on a line.
func Example_classify() {
	train, _ := dataset.FromRows([][]float64{{0}, {1}, {2}, {3}})
	labels := dataset.Labels{0, 0, 1, 1}
	test, _ := dataset.FromRows([][]float64{{0.4}, {2.9}})

	clf, err := knn.New(knn.Config{K: 3, Classes: 2})
	if err != nil {
		log.Fatal(err)
	}

	pred, err := clf.Classify(context.Background(), train, labels, test)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(pred)
	// Output: [0 1]
}

// Example_kNeighbors inspects the neighbor queue of a test point.
func Example_kNeighbors() {
	train, _ := dataset.FromRows([][]float64{{0}, {1}, {2}, {3}})
	test, _ := dataset.FromRows([][]float64{{1.5}})

	clf, _ := knn.New(knn.Config{K: 3, Classes: 2})
	model, _ := clf.Fit(train, dataset.Labels{0, 0, 1, 1})

	neighbors, _ := model.KNeighbors(context.Background(), test)
	for _, n := range neighbors[0] {
		fmt.Printf("%.1f %d\n", n.Distance, n.Label)
	}
	// Output:
	// 0.5 0
	// 0.5 1
	// 1.5 0
}

// Example_validate cross-checks predictions against the reference classifier.
func Example_validate() {
	set, _ := dataset.Generate(dataset.GenerateConfig{Train: 256, Test: 64, Dim: 16, Classes: 3, Seed: dataset.DefaultSeed})

	clf, _ := knn.New(knn.DefaultConfig(), knn.WithWorkers(4))
	pred, _ := clf.Classify(context.Background(), set.Train, set.TrainLabels, set.Test)

	ref, _ := eval.Reference(set.Train, set.TrainLabels, set.Test, 5, 3)
	fmt.Println(eval.Validate(ref, pred) == nil)
	// Output: true
}

// Example_errors shows how configuration errors are matched.
func Example_errors() {
	train, _ := dataset.FromRows([][]float64{{0}, {1}})

	clf, _ := knn.New(knn.Config{K: 3, Classes: 2})
	_, err := clf.Fit(train, dataset.Labels{0, 1})

	var tooFew *knn.ErrTooFewTrainingPoints
	fmt.Println(errors.Is(err, knn.ErrInvalidConfig), errors.As(err, &tooFew))
	// Output: true true
}
