package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument errors
const (
	// ErrCodeArgumentOutOfRange indicates an index that is negative or past the end of a sequence.
	ErrCodeArgumentOutOfRange ErrorCode = "ARGUMENT_OUT_OF_RANGE"
	// ErrCodeArgumentNull indicates an operation that needs at least one element ran on an empty source.
	ErrCodeArgumentNull ErrorCode = "ARGUMENT_NULL"
	// ErrCodeInvalidArgument indicates an argument the operator cannot work with.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// State errors
const (
	// ErrCodeInvalidOperation indicates the operation is not valid for the sequence contents.
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	// ErrCodeSequenceClosed indicates a pipeline was used after it had been consumed.
	ErrCodeSequenceClosed ErrorCode = "SEQUENCE_CLOSED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure inside the library.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// programmerErrors are codes that signal misuse rather than bad data.
var programmerErrors = map[ErrorCode]bool{
	ErrCodeSequenceClosed: true,
	ErrCodeInternal:       true,
}

// IsProgrammerError returns true if the code signals misuse of the API.
func IsProgrammerError(code ErrorCode) bool {
	return programmerErrors[code]
}
