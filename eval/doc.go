// Package eval checks and scores classification output.
//
// Reference is a deliberately simple classifier that sorts all training
// distances and votes over the first K. Its output must equal the
// incremental classifier's output exactly, which Validate checks.
// Evaluate scores predictions against known labels.
package eval
