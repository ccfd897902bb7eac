// Package distance provides the Euclidean distance used by the classifier.
//
// Every caller (fill phase, stream phase and the reference classifier in
// package eval) goes through the same function with the same iteration
// order, so equal inputs always produce bit-identical distances.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	sq := distance.SquaredEuclidean(a, b)
package distance
