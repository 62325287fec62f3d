// Package outcome provides the success/failure result type threaded through every
// supplier and synchronization operation.
//
// A Result carries either a value or a structured failure made of a Code drawn from
// a closed taxonomy (see codes.go) and a human readable message. Failures never
// cross component boundaries as panics or raw transport errors: boundaries convert
// them with FromError or Guard.
package outcome

import (
	"errors"
	"fmt"
)

// Result is an immutable success/failure value. The zero Result is a failure with
// an empty code; construct results with Ok or Fail.
type Result[T any] struct {
	value   T
	code    Code
	message string
	ok      bool
}

// Ok returns a successful Result wrapping value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Fail returns a failed Result with the given code and message.
func Fail[T any](code Code, message string) Result[T] {
	return Result[T]{code: code, message: message}
}

// Failf is like Fail but formats the message.
func Failf[T any](code Code, format string, args ...any) Result[T] {
	return Fail[T](code, fmt.Sprintf(format, args...))
}

// Success reports whether the result holds a value.
func (r Result[T]) Success() bool {
	return r.ok
}

// Value returns the wrapped value. Calling Value on a failed result is a
// programming error and panics.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Sprintf("outcome: Value called on failed result (%s: %s)", r.code, r.message))
	}
	return r.value
}

// Code returns the failure code, or an empty code on success.
func (r Result[T]) Code() Code {
	return r.code
}

// Message returns the failure message, or an empty string on success.
func (r Result[T]) Message() string {
	return r.message
}

// Err returns the failure as an *Error, or nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return &Error{Code: r.code, Message: r.message}
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("ok(%v)", r.value)
	}
	return fmt.Sprintf("error(%s: %s)", r.code, r.message)
}

// Error is the error form of a failed Result.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Then runs fn with the value of r when r succeeded. A failed r short-circuits
// and its code and message are propagated unchanged.
func Then[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Forward[U](r)
	}
	return fn(r.value)
}

// Map transforms the value of a successful result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Forward[U](r)
	}
	return Ok(fn(r.value))
}

// Forward re-types a failed result, keeping its code and message. Forwarding a
// successful result is a programming error and panics.
func Forward[U, T any](r Result[T]) Result[U] {
	if r.ok {
		panic("outcome: Forward called on successful result")
	}
	return Fail[U](r.code, r.message)
}

// FromError converts err into a failed Result. An *Error anywhere in the chain keeps
// its code; any other error becomes CodeUnexpectedError.
func FromError[T any](err error) Result[T] {
	var oe *Error
	if errors.As(err, &oe) {
		return Fail[T](oe.Code, oe.Message)
	}
	if err == nil {
		return Fail[T](CodeUnexpectedError, "nil error converted to failure")
	}
	return Fail[T](CodeUnexpectedError, err.Error())
}

// Guard runs fn and converts a panic escaping it into a failed Result with
// CodeUnexpectedError.
func Guard[T any](fn func() Result[T]) (result Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			result = Failf[T](CodeUnexpectedError, "unexpected panic: %v", rec)
		}
	}()
	return fn()
}
