package errors

// Convenience functions for common error patterns

// Caller input and precondition errors

func InvalidArgument(message string) *ServerError {
	return New(CategoryInvalidArgument, SeverityError, message)
}

func NilArgument(name string) *ServerError {
	return New(CategoryInvalidArgument, SeverityError, "argument must not be nil").
		WithContext("argument", name)
}

func AlreadyRunning(operation string) *ServerError {
	return New(CategoryAlreadyRunning, SeverityError, "server is already running").
		WithContext("operation", operation)
}

func NotRunning(operation string) *ServerError {
	return New(CategoryNotRunning, SeverityError, "server is not running").
		WithContext("operation", operation)
}

// Engine boundary errors

func Unsupported(operation string) *ServerError {
	return New(CategoryUnsupported, SeverityWarning, "operation not supported by engine").
		WithContext("operation", operation)
}

func EngineFailure(operation string, cause error) *ServerError {
	return Wrap(cause, CategoryEngine, SeverityError, "engine operation failed").
		WithContext("operation", operation)
}

// Internal errors

func Internal(message string) *ServerError {
	return New(CategoryInternal, SeverityFatal, message)
}

func WrapInternal(err error, message string) *ServerError {
	return Wrap(err, CategoryInternal, SeverityFatal, message)
}

// Category predicates, used by callers that only need a yes/no answer.

func IsInvalidArgument(err error) bool { return IsCategory(err, CategoryInvalidArgument) }
func IsAlreadyRunning(err error) bool  { return IsCategory(err, CategoryAlreadyRunning) }
func IsNotRunning(err error) bool      { return IsCategory(err, CategoryNotRunning) }
func IsUnsupported(err error) bool     { return IsCategory(err, CategoryUnsupported) }
