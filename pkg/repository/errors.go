package repository

import "github.com/m-mizutani/goerr/v2"

var (
	ErrNotFound = goerr.New("not found")

	// ErrDuplicateRows signals a broken uniqueness invariant, e.g. two
	// asset rows sharing one name. This aborts the current repository's
	// processing but not the batch.
	ErrDuplicateRows = goerr.New("duplicate rows")
)
