// Package errors provides the error kinds raised by sequence pipelines and
// their operators. Every failure is an *AppError carrying a machine-readable
// ErrorCode, so callers can branch on the kind with Is or CodeOf instead of
// matching messages.
package errors
