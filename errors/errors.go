package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Item errors: the item is skipped, the batch continues.
	ErrorTypeImageLoad           ErrorType = "image_load"
	ErrorTypeObjectCountMismatch ErrorType = "object_count_mismatch"
	ErrorTypePixelCountMismatch  ErrorType = "pixel_count_mismatch"
	ErrorTypeTooManyInstances    ErrorType = "too_many_instances"
	ErrorTypeEncode              ErrorType = "encode"

	// Batch errors: the run cannot safely continue.
	ErrorTypeFilesystem ErrorType = "filesystem"

	// Setup errors
	ErrorTypeInvalid ErrorType = "invalid"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error codes, one per type, stable for reports.
const (
	CodeImageLoad           = "IMAGE_LOAD"
	CodeObjectCountMismatch = "OBJECT_COUNT_MISMATCH"
	CodePixelCountMismatch  = "PIXEL_COUNT_MISMATCH"
	CodeTooManyInstances    = "TOO_MANY_INSTANCES"
	CodeEncode              = "ENCODE_FAILED"
	CodeFilesystem          = "FILESYSTEM"
	CodeInvalid             = "INVALID_FIELD"
	CodeUnknown             = "UNKNOWN"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType      `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	InnerError error          `json:"-"`
	Stack      []string       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Type)
	}
	if e.InnerError != nil {
		return msg + ": " + e.InnerError.Error()
	}
	return msg
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *AppError) WithStack() *AppError {
	e.Stack = captureStack(3)
	return e
}

// Is reports whether target is an AppError of the same type, so that
// errors.Is(err, errors.New(ErrorTypeImageLoad, "")) matches any load failure.
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    codeFor(errType),
	}
}

// FromError converts a standard error to AppError, searching the wrap chain first.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Code:       CodeUnknown,
		Message:    err.Error(),
		InnerError: err,
	}
}

// WrapWithType wraps an error with a specific type
func WrapWithType(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		InnerError: err,
		Code:       codeFor(errType),
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	return FromError(err).Type
}

// IsBatchFatal reports whether err must stop a whole batch run rather than a single item.
func IsBatchFatal(err error) bool {
	return TypeOf(err) == ErrorTypeFilesystem
}

// NewImageLoad reports a missing, unreadable or undecodable image.
func NewImageLoad(path string, err error) *AppError {
	return WrapWithType(err, ErrorTypeImageLoad, fmt.Sprintf("cannot load image %s", path)).
		WithDetail("path", path)
}

// NewObjectCountMismatch reports a label image whose distinct value count differs
// from the distinct color count of its source mask.
func NewObjectCountMismatch(expected, actual int) *AppError {
	// Counts include background; the message reports objects without it, like the tool always has.
	return New(ErrorTypeObjectCountMismatch,
		fmt.Sprintf("object count changed from %d to %d", expected-1, actual-1)).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// NewPixelCountMismatch reports per-label pixel counts that do not occur in the
// per-color pixel counts of the source mask. Order of correspondence is not significant.
func NewPixelCountMismatch(expectedCounts, actualCounts []int) *AppError {
	return New(ErrorTypePixelCountMismatch,
		fmt.Sprintf("pixel counts %v do not match source counts %v", actualCounts, expectedCounts)).
		WithDetail("expected_counts", expectedCounts).
		WithDetail("actual_counts", actualCounts)
}

// NewTooManyInstances reports a mask whose instances do not fit an 8-bit label space.
func NewTooManyInstances(count, limit int) *AppError {
	return New(ErrorTypeTooManyInstances,
		fmt.Sprintf("%d instances exceed the %d label limit", count, limit)).
		WithDetail("count", count).
		WithDetail("limit", limit)
}

// NewEncode reports a failure to encode an output image.
func NewEncode(path string, err error) *AppError {
	return WrapWithType(err, ErrorTypeEncode, fmt.Sprintf("cannot encode %s", path)).
		WithDetail("path", path)
}

// NewFilesystem reports a failed filesystem operation on path. It carries the
// caller's stack, since it ends the whole batch.
func NewFilesystem(op, path string, err error) *AppError {
	return WrapWithType(err, ErrorTypeFilesystem, fmt.Sprintf("%s %s", op, path)).
		WithDetail("op", op).
		WithDetail("path", path).
		WithStack()
}

// NewInvalid reports an invalid setting.
func NewInvalid(field string, value any, reason string) *AppError {
	return New(ErrorTypeInvalid, fmt.Sprintf("invalid value for %s: %v (%s)", field, value, reason)).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason)
}

func codeFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeImageLoad:
		return CodeImageLoad
	case ErrorTypeObjectCountMismatch:
		return CodeObjectCountMismatch
	case ErrorTypePixelCountMismatch:
		return CodePixelCountMismatch
	case ErrorTypeTooManyInstances:
		return CodeTooManyInstances
	case ErrorTypeEncode:
		return CodeEncode
	case ErrorTypeFilesystem:
		return CodeFilesystem
	case ErrorTypeInvalid:
		return CodeInvalid
	default:
		return CodeUnknown
	}
}

// ErrorFormatter formats errors for display
type ErrorFormatter struct {
	showStack bool
	showInner bool
}

// NewErrorFormatter creates a new error formatter
func NewErrorFormatter(showStack bool, showInner bool) *ErrorFormatter {
	return &ErrorFormatter{
		showStack: showStack,
		showInner: showInner,
	}
}

// Format formats an error as a single line. Details are printed in key order.
func (f *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	appErr := FromError(err)

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", appErr.Type, appErr.Message))

	if len(appErr.Details) > 0 {
		keys := make([]string, 0, len(appErr.Details))
		for k := range appErr.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, appErr.Details[k]))
		}
	}

	if f.showStack && len(appErr.Stack) > 0 {
		parts = append(parts, "stack:")
		for _, s := range appErr.Stack {
			parts = append(parts, "  "+s)
		}
	}

	if f.showInner && appErr.InnerError != nil {
		parts = append(parts, "caused_by: "+appErr.InnerError.Error())
	}

	return strings.Join(parts, " | ")
}

// captureStack captures the call stack
func captureStack(skip int) []string {
	var stack []string
	for i := skip; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()
		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}

		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, funcName))
	}
	return stack
}

// ErrorChain collects errors from concurrent workers. The zero value is ready to use.
type ErrorChain struct {
	mu     sync.Mutex
	errors []*AppError
}

// NewErrorChain creates a new error chain
func NewErrorChain() *ErrorChain {
	return &ErrorChain{}
}

// Add adds an error to the chain
func (c *ErrorChain) Add(err error) *ErrorChain {
	if err == nil {
		return c
	}
	c.mu.Lock()
	c.errors = append(c.errors, FromError(err))
	c.mu.Unlock()
	return c
}

// HasErrors checks if the chain has errors
func (c *ErrorChain) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) > 0
}

// Error returns the combined error message
func (c *ErrorChain) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]string, 0, len(c.errors))
	for _, err := range c.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, " | ")
}

// Errors returns a copy of all errors in the chain
func (c *ErrorChain) Errors() []*AppError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*AppError, len(c.errors))
	copy(out, c.errors)
	return out
}

// First returns the first error in the chain
func (c *ErrorChain) First() *AppError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors[0]
}

// HasType checks if the chain has an error of the specified type
func (c *ErrorChain) HasType(errType ErrorType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, err := range c.errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// CountByType returns how many errors of each type the chain holds.
func (c *ErrorChain) CountByType() map[ErrorType]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[ErrorType]int)
	for _, err := range c.errors {
		counts[err.Type]++
	}
	return counts
}
