// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := newValidationError(InvalidBSON, "incorrect BSON length")
		if err.Error() != "incorrect BSON length" {
			t.Errorf("Unexpected message. got %q", err.Error())
		}

		err.Context = "in element with field name 'a'"
		want := "incorrect BSON length in element with field name 'a'"
		if err.Error() != want {
			t.Errorf("Unexpected message. got %q; want %q", err.Error(), want)
		}
	})
	t.Run("ErrorStack", func(t *testing.T) {
		err := newValidationError(InvalidBSON, "boom")
		s := err.ErrorStack()
		if !strings.HasPrefix(s, "boom: [") {
			t.Errorf("Unexpected stack rendering: %q", s)
		}
		if !strings.Contains(s, "TestValidationError") {
			t.Errorf("Expected the stack to contain the test frame: %q", s)
		}
	})
	t.Run("Equals", func(t *testing.T) {
		a := newValidationError(Overflow, "one")
		b := newValidationError(Overflow, "two")
		c := newValidationError(InvalidBSON, "one")
		if !a.Equals(b) {
			t.Error("Expected errors with the same code to be equal")
		}
		if a.Equals(c) {
			t.Error("Expected errors with different codes to not be equal")
		}
		if a.Equals(errors.New("one")) {
			t.Error("Expected a non-ValidationError to not be equal")
		}
	})
	t.Run("CodeOf", func(t *testing.T) {
		if got := CodeOf(newValidationError(NonConformantBSON, "x")); got != NonConformantBSON {
			t.Errorf("Unexpected code. got %v", got)
		}
		if got := CodeOf(errors.New("x")); got != 0 {
			t.Errorf("Expected zero code for foreign error. got %v", got)
		}
		if got := CodeOf(nil); got != 0 {
			t.Errorf("Expected zero code for nil error. got %v", got)
		}
	})
	t.Run("CodeString", func(t *testing.T) {
		testCases := []struct {
			code ErrorCode
			want string
		}{
			{InvalidBSON, "InvalidBSON"},
			{NonConformantBSON, "NonConformantBSON"},
			{Overflow, "Overflow"},
			{ErrorCode(99), "invalid"},
		}
		for _, tc := range testCases {
			if got := tc.code.String(); got != tc.want {
				t.Errorf("ErrorCode(%d).String() = %q; want %q", tc.code, got, tc.want)
			}
		}
	})
}
