// Package apperr holds the error taxonomy shared by the LLM Client, Slot
// Runtime, Collaboration Engine, Session Registry, and Public Surface. It
// is grounded on haasonsaas-nexus's
// internal/agent/providers/errors.go ProviderError/FailoverReason shape,
// generalized from "provider call failed" to the whole application's error
// classes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Class is one of the error taxonomy tags.
type Class string

const (
	ClassConfig     Class = "config"
	ClassTransport  Class = "transport"
	ClassProvider4x Class = "provider_4xx"
	ClassProvider5x Class = "provider_5xx"
	ClassTimeout    Class = "timeout"
	ClassCanceled   Class = "canceled"
	ClassDecode     Class = "decode"
	ClassInternal   Class = "internal"
	ClassBusy       Class = "busy"
)

// Retryable reports whether the error class is worth retrying: transient
// network/5xx/429 errors are, other 4xx/decode/config errors are not.
func (c Class) Retryable() bool {
	switch c {
	case ClassTransport, ClassProvider5x, ClassTimeout:
		return true
	default:
		return false
	}
}

// ClassifiedError is a structured error carrying a taxonomy class plus the
// slot it concerns and a human-readable reason.
type ClassifiedError struct {
	Class   Class
	Slot    string
	Status  int
	Message string
	Cause   error
}

func (e *ClassifiedError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Class))
	if e.Slot != "" {
		parts = append(parts, "slot="+e.Slot)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// New builds a ClassifiedError of the given class.
func New(class Class, slot, message string) *ClassifiedError {
	return &ClassifiedError{Class: class, Slot: slot, Message: message}
}

// Wrap builds a ClassifiedError of the given class around cause.
func Wrap(class Class, slot string, cause error) *ClassifiedError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &ClassifiedError{Class: class, Slot: slot, Message: msg, Cause: cause}
}

// WithStatus attaches an HTTP status code, reclassifying 4xx/5xx as needed.
func (e *ClassifiedError) WithStatus(status int) *ClassifiedError {
	e.Status = status
	switch {
	case status == http.StatusTooManyRequests:
		// 429 is retryable even though it's a 4xx.
		e.Class = ClassProvider5x
	case status >= 400 && status < 500:
		e.Class = ClassProvider4x
	case status >= 500:
		e.Class = ClassProvider5x
	}
	return e
}

// As extracts a *ClassifiedError from err's chain, if present.
func As(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ClassOf returns the class of err if it is (or wraps) a ClassifiedError,
// otherwise ClassInternal.
func ClassOf(err error) Class {
	if ce, ok := As(err); ok {
		return ce.Class
	}
	return ClassInternal
}

// IsRetryable reports whether err should be retried.
func IsRetryable(err error) bool {
	return ClassOf(err).Retryable()
}
