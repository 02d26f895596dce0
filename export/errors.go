package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines export error kinds.
type ErrorKind string

const (
	KindInvalidMode   ErrorKind = "invalid_mode"
	KindFormatting    ErrorKind = "formatting"
	KindSerialization ErrorKind = "serialization"
	KindDelivery      ErrorKind = "delivery"
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindTimeout       ErrorKind = "timeout"
	KindCanceled      ErrorKind = "canceled"
	KindInternal      ErrorKind = "internal"
	KindNotImpl       ErrorKind = "not_implemented"
)

// ExportError wraps errors with a kind.
type ExportError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewError creates a new export error.
func NewError(kind ErrorKind, msg string, err error) *ExportError {
	return &ExportError{Kind: kind, Msg: msg, Err: err}
}

// IsInvalidMode reports whether err is an unrecognized selection mode failure.
func IsInvalidMode(err error) bool { return KindFromError(err) == KindInvalidMode }

// IsFormatting reports whether err is a cell formatting failure.
func IsFormatting(err error) bool { return KindFromError(err) == KindFormatting }

// IsSerialization reports whether err is a serializer failure.
func IsSerialization(err error) bool { return KindFromError(err) == KindSerialization }

// IsDelivery reports whether err is a sink failure.
func IsDelivery(err error) bool { return KindFromError(err) == KindDelivery }

// AsGoError maps an error into a go-errors error. The source error stays
// reachable through errors.As.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var exportErr *ExportError
	if errors.As(err, &exportErr) && exportErr.Msg != "" {
		msg = exportErr.Msg
	}

	switch kind {
	case KindInvalidMode:
		return errorslib.Wrap(err, errorslib.CategoryValidation, msg).WithTextCode("invalid_mode")
	case KindFormatting:
		return errorslib.Wrap(err, errorslib.CategoryValidation, msg).WithTextCode("formatting")
	case KindSerialization:
		return errorslib.Wrap(err, errorslib.CategoryBadInput, msg).WithTextCode("serialization")
	case KindDelivery:
		return errorslib.Wrap(err, errorslib.CategoryExternal, msg).WithTextCode("delivery")
	case KindValidation:
		return errorslib.Wrap(err, errorslib.CategoryValidation, msg).WithTextCode("validation")
	case KindNotFound:
		return errorslib.Wrap(err, errorslib.CategoryNotFound, msg).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.Wrap(err, errorslib.CategoryOperation, msg).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.Wrap(err, errorslib.CategoryOperation, msg).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.Wrap(err, errorslib.CategoryOperation, msg).WithTextCode("not_implemented")
	default:
		return errorslib.Wrap(err, errorslib.CategoryInternal, msg).WithTextCode("internal")
	}
}

// KindFromError maps an error to its export error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}
