package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrColumnNotFound   = errors.New("column not found in dataset")
	ErrBadPriorShape    = errors.New("prior knowledge must contain only required/forbidden edge lists")
	ErrUnknownAlgorithm = errors.New("unknown discovery algorithm")
	ErrUnknownMethod    = errors.New("unknown method")

	// Pipeline ordering errors
	ErrNoGraph    = errors.New("no causal graph available")
	ErrNoModel    = errors.New("no causal model available")
	ErrNoEstimand = errors.New("no estimand available")
	ErrNoEstimate = errors.New("no estimate available")

	// Graph errors
	ErrCyclicGraph  = errors.New("graph contains a directed cycle")
	ErrNodeNotFound = errors.New("node not found in graph")

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyDataset     = errors.New("dataset has no rows")
)

// NewColumnError reports a treatment/outcome column missing from the dataset.
func NewColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

// NewAlgorithmError reports an unrecognized discovery algorithm identifier.
func NewAlgorithmError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

// NewMethodError reports an unrecognized method identifier for a stage.
func NewMethodError(stage, name string) error {
	return fmt.Errorf("%w: %s method %q", ErrUnknownMethod, stage, name)
}

// IsOrderingError reports whether err indicates a stage ran before its
// required predecessor state existed.
func IsOrderingError(err error) bool {
	return errors.Is(err, ErrNoGraph) ||
		errors.Is(err, ErrNoModel) ||
		errors.Is(err, ErrNoEstimand) ||
		errors.Is(err, ErrNoEstimate)
}

// IsInputError reports whether err indicates malformed caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrBadPriorShape) ||
		errors.Is(err, ErrUnknownAlgorithm) ||
		errors.Is(err, ErrUnknownMethod)
}
