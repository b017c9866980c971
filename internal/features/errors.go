package features

import "errors"

var (
	// ErrEmptyInput is returned when there are no game rows to work with.
	ErrEmptyInput = errors.New("no game data to process")

	// ErrMissingColumn is returned when a requested target stat is not present
	// in the feature table. Missing *feature* columns are never an error; they
	// are silently omitted from the selected set.
	ErrMissingColumn = errors.New("target column not present in feature table")
)
