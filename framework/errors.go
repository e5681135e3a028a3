package framework

import "errors"

// ErrClosed is returned by adapter operations attempted after Close.
var ErrClosed = errors.New("test framework has been closed")

// SetupError means the test library itself could not be found on the task's classpath.
// It is not something that a change to the framework options can fix.
type SetupError struct {
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error { return e.Err }

// InvalidUserDataError means the user asked for something that is not possible, such as
// enabling a feature that the installed version of the test library does not have.
type InvalidUserDataError struct {
	Message string
	Err     error
}

func (e *InvalidUserDataError) Error() string { return e.Message }

func (e *InvalidUserDataError) Unwrap() error { return e.Err }

func IsSetupError(err error) bool {
	var e *SetupError
	return errors.As(err, &e)
}

func IsInvalidUserData(err error) bool {
	var e *InvalidUserDataError
	return errors.As(err, &e)
}
