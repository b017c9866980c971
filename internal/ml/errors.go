package ml

import "errors"

var (
	// ErrEmptyInput is returned when training or prediction is attempted with
	// no feature data.
	ErrEmptyInput = errors.New("no data for model")

	// ErrNoModel is returned when prediction is requested for a stat that has
	// never been trained and has no persisted model on disk.
	ErrNoModel = errors.New("no trained model available")
)
