// Package apperror classifies failures so controllers can map them to
// transport status codes without string matching.
package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeValidation        Code = "validation"
	CodePolicy            Code = "policy"
	CodeUpstreamTransient Code = "upstream_transient"
	CodeUpstreamPermanent Code = "upstream_permanent"
	CodeInternal          Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func Policy(message string) *Error {
	return New(CodePolicy, message)
}

// CodeOf extracts the classification of err, defaulting to internal for
// anything unclassified.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// MessageOf returns the user-facing message of a classified error, or a
// generic one so internal detail never leaks to the transport layer.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
