// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"

	"github.com/go-stack/stack"
)

// ErrorCode classifies a validation failure.
type ErrorCode uint8

const (
	// InvalidBSON indicates a buffer that is corrupt or truncated: declared
	// lengths that don't fit, missing terminators, strings without NUL,
	// unrecognized type bytes and similar malformations.
	InvalidBSON ErrorCode = iota + 1
	// NonConformantBSON indicates a violation of the BSON column grammar
	// layered on top of otherwise parseable data.
	NonConformantBSON
	// Overflow indicates that nesting exceeds the configured maximum depth.
	// It is reported distinctly from InvalidBSON so callers can tell "too
	// deeply nested" apart from "corrupt".
	Overflow
)

// String returns the string representation of the error code's name.
func (c ErrorCode) String() string {
	switch c {
	case InvalidBSON:
		return "InvalidBSON"
	case NonConformantBSON:
		return "NonConformantBSON"
	case Overflow:
		return "Overflow"
	default:
		return "invalid"
	}
}

// ValidationError is the tagged failure returned by Validate and
// ValidateColumn. Context is only populated by the precise validation mode
// and is a best-effort string for operators; callers must not parse it.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Context string
	Stack   stack.CallStack
}

func newValidationError(code ErrorCode, msg string) ValidationError {
	return ValidationError{Code: code, Message: msg, Stack: stack.Trace().TrimRuntime()}
}

func newValidationErrorf(code ErrorCode, format string, args ...interface{}) ValidationError {
	return ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   stack.Trace().TrimRuntime(),
	}
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return e.Message + " " + e.Context
}

// ErrorStack returns a string representing the stack at the point where the
// error occurred.
func (e ValidationError) ErrorStack() string {
	s := bytes.NewBufferString(e.Message)
	s.WriteString(": [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// Equals checks that err2 is a ValidationError with the same code.
func (e ValidationError) Equals(err2 error) bool {
	ve, ok := err2.(ValidationError)
	return ok && ve.Code == e.Code
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	_, ok := err.(ValidationError)
	return ok
}

// CodeOf returns the ErrorCode carried by err, or zero if err is not a
// ValidationError.
func CodeOf(err error) ErrorCode {
	ve, ok := err.(ValidationError)
	if !ok {
		return 0
	}
	return ve.Code
}
