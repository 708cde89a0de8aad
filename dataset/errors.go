package dataset

import "fmt"

// EmptyPoolError reports a resource directory with no usable files. It aborts
// the run before any output directory is created.
type EmptyPoolError struct {
	Kind string
	Dir  string
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("no %s files found in %s", e.Kind, e.Dir)
}

// PageError isolates the failure of a single page. Index is the 1-based
// position in the split, which is also the output file number.
type PageError struct {
	Split string
	Index int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s page %d: %v", e.Split, e.Index, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
