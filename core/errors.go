package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds, reported to clients alongside the error message.
const (
	KindValidation        = "validation_error"
	KindSchema            = "schema_error"
	KindUnsupportedFormat = "unsupported_format"
	KindDecode            = "decode_error"
	KindStorage           = "storage_error"
	KindNotFound          = "not_found"
	KindUnknownDepartment = "unknown_department"
	KindModelUnavailable  = "model_unavailable"
	KindPrediction        = "prediction_error"
)

// Kinded is implemented by every domain error.
type Kinded interface {
	error
	Kind() string
}

// ErrorKind returns the kind of the domain error wrapped in err, or "" for any other error.
func ErrorKind(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (ValidationError) Kind() string { return KindValidation }

// SchemaError reports a table whose header does not match the expected columns.
type SchemaError struct {
	Missing     []string
	Unexpected  []string
	Misordered  bool
	Suggestions map[string]string // unexpected column -> closest missing column
}

func (err SchemaError) Error() string {
	var parts []string
	if len(err.Missing) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(err.Missing, ", "))
	}
	if len(err.Unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(err.Unexpected, ", "))
	}
	if err.Misordered {
		parts = append(parts, "columns are not in the required order")
	}
	if len(parts) == 0 {
		return "invalid table schema"
	}
	return strings.Join(parts, "; ")
}

func (SchemaError) Kind() string { return KindSchema }

type UnsupportedFormatError struct {
	Filename string
}

func (err UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (expected .csv, .xls or .xlsx)", err.Filename)
}

func (UnsupportedFormatError) Kind() string { return KindUnsupportedFormat }

type DecodeError struct {
	Filename string
	Err      error
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("could not decode %q: %v", err.Filename, err.Err)
}

func (err DecodeError) Unwrap() error { return err.Err }

func (DecodeError) Kind() string { return KindDecode }

// StorageError reports a snapshot that could not be read or written.
type StorageError struct {
	Op  string // load | save
	Key string
	Err error
}

func (err StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", err.Op, err.Key, err.Err)
}

func (err StorageError) Unwrap() error { return err.Err }

func (StorageError) Kind() string { return KindStorage }

type NotFoundError struct {
	Message string
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func (err NotFoundError) Error() string { return err.Message }

func (NotFoundError) Kind() string { return KindNotFound }

type UnknownDepartmentError struct {
	Department string
}

func (err UnknownDepartmentError) Error() string {
	return fmt.Sprintf("unknown department %q", err.Department)
}

func (UnknownDepartmentError) Kind() string { return KindUnknownDepartment }

type ModelUnavailableError struct{}

func (ModelUnavailableError) Error() string { return "prediction model is not available" }

func (ModelUnavailableError) Kind() string { return KindModelUnavailable }

type PredictionError struct {
	Err error
}

func (err PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", err.Err)
}

func (err PredictionError) Unwrap() error { return err.Err }

func (PredictionError) Kind() string { return KindPrediction }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
