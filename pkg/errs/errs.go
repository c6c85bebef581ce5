package errs

import (
	"context"
	"fmt"

	"github.com/segmentio/errors-go"
	"github.com/segmentio/stats/v4"
)

const (
	defaultErrName = "errors"
)

const (
	// these error types are handy when using errors-go
	ErrTypeTemporary = "Temporary"
	ErrTypePermanent = "Permanent"
)

func IsCanceled(err error) bool {
	return err != nil && errors.Cause(err) == context.Canceled
}

// IncrDefault increments the default error metric
func IncrDefault(tags ...stats.Tag) {
	Incr(defaultErrName, tags...)
}

// Incr increments an error metric, along with the default error metric
func Incr(name string, tags ...stats.Tag) {
	stats.Incr(name, tags...)
	if name == defaultErrName {
		// don't increment the default error twice
		return
	}
	// add a tag to indicate the name of the original error. We can then
	// view that tag in datadog to figure out what the error was.
	newTags := make([]stats.Tag, len(tags), len(tags)+1)
	copy(newTags, tags)
	newTags = append(newTags, stats.T("error", name))
	stats.Incr(defaultErrName, newTags...)
}

// The loader and transform functions surface a fixed taxonomy of failures.
// Each class gets its own error type so that callers can branch on the
// failure class without parsing messages.
type baseError struct {
	Err string
}

// NotFoundError indicates that a source file does not exist.
type NotFoundError baseError

func (e NotFoundError) Error() string {
	return e.Err
}

func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{
		Err: fmt.Sprintf(format, args...),
	}
}

// FormatError indicates an unsupported or unrecognized file format.
type FormatError baseError

func (e FormatError) Error() string {
	return e.Err
}

func BadFormat(format string, args ...interface{}) error {
	return &FormatError{
		Err: fmt.Sprintf(format, args...),
	}
}

// ColumnError indicates a missing or invalid column reference.
type ColumnError baseError

func (e ColumnError) Error() string {
	return e.Err
}

func MissingColumn(format string, args ...interface{}) error {
	return &ColumnError{
		Err: fmt.Sprintf(format, args...),
	}
}

// LiteralError indicates malformed literal content in a conversion column.
type LiteralError baseError

func (e LiteralError) Error() string {
	return e.Err
}

func BadLiteral(format string, args ...interface{}) error {
	return &LiteralError{
		Err: fmt.Sprintf(format, args...),
	}
}

// TypeError indicates a type mismatch on an input argument.
type TypeError baseError

func (e TypeError) Error() string {
	return e.Err
}

func BadType(format string, args ...interface{}) error {
	return &TypeError{
		Err: fmt.Sprintf(format, args...),
	}
}

// BadRequestError indicates an invalid argument value (bad chunk size, bad
// partition count, and so on).
type BadRequestError baseError

func (e BadRequestError) Error() string {
	return e.Err
}

func BadRequest(format string, args ...interface{}) error {
	return &BadRequestError{
		Err: fmt.Sprintf(format, args...),
	}
}
