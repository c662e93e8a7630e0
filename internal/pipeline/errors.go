package pipeline

import "errors"

// Failure taxonomy for a training run. All of these are terminal for the
// current task; callers report them and move on to the next task.
var (
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrMissingTarget    = errors.New("target column missing")
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownTask      = errors.New("unknown task")
)
