package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors reported by a notification store.
type ErrorKind int

const (
	// KindOther is any backend error that we don't have specific advice for.
	KindOther ErrorKind = iota

	// KindAccessDenied means that the store's access policy rejected the request.
	KindAccessDenied

	// KindMissingIndex means that the store needs an index that hasn't been created.
	KindMissingIndex
)

// String returns the name of an error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAccessDenied:
		return "access-denied"
	case KindMissingIndex:
		return "missing-index"
	default:
		return "backend-error"
	}
}

// StoreError is an error returned by a notification store that has been classified.
type StoreError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

// Error returns the error message for a StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError returns a new classified store error.
func NewStoreError(kind ErrorKind, code string, err error) *StoreError {
	return &StoreError{Kind: kind, Code: code, Message: err.Error(), Err: err}
}

// KindOf returns the kind of a store error, which may be wrapped. Unclassified errors are KindOther.
func KindOf(err error) ErrorKind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return KindOther
}

// CodeOf returns the backend error code of a store error, or "unknown" if there isn't one.
func CodeOf(err error) string {
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Code != "" {
		return storeErr.Code
	}
	return "unknown"
}
