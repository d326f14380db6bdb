// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCursor(t *testing.T) {
	t.Run("SkipWithinBounds", func(t *testing.T) {
		c := cursor{data: make([]byte, 10), pos: 0, end: 10}
		if err := c.skip(4); err != nil {
			t.Errorf("Unexpected error. got %v; want <nil>", err)
		}
		if c.pos != 4 {
			t.Errorf("Position not advanced. got %d; want 4", c.pos)
		}
	})
	t.Run("SkipToEnd", func(t *testing.T) {
		// A skip landing exactly on end fails: every buffer carries a
		// trailing terminator past the skipped bytes.
		c := cursor{data: make([]byte, 10), pos: 0, end: 10}
		err := c.skip(10)
		if CodeOf(err) != InvalidBSON {
			t.Errorf("Expected InvalidBSON. got %v", err)
		}
	})
	t.Run("SkipPastEnd", func(t *testing.T) {
		c := cursor{data: make([]byte, 10), pos: 8, end: 10}
		err := c.skip(3)
		if CodeOf(err) != InvalidBSON {
			t.Errorf("Expected InvalidBSON. got %v", err)
		}
		if c.pos != 8 {
			t.Errorf("Position moved on failed skip. got %d; want 8", c.pos)
		}
	})
	t.Run("SkipHugeCount", func(t *testing.T) {
		// A count near the uint32 maximum must not wrap around the bounds check.
		c := cursor{data: make([]byte, 10), pos: 8, end: 10}
		err := c.skip(0xFFFFFFFF)
		if CodeOf(err) != InvalidBSON {
			t.Errorf("Expected InvalidBSON. got %v", err)
		}
	})
	t.Run("ReadInt32", func(t *testing.T) {
		c := cursor{data: []byte{'\x2A', '\x00', '\x00', '\x00', '\x00'}, pos: 0, end: 5}
		got, err := c.readInt32()
		if err != nil {
			t.Errorf("Unexpected error. got %v; want <nil>", err)
		}
		if diff := cmp.Diff(int32(42), got); diff != "" {
			t.Errorf("Read value differs: %s", diff)
		}
	})
	t.Run("SkipString", func(t *testing.T) {
		testCases := []struct {
			name string
			data []byte
			code ErrorCode
		}{
			{"valid", []byte{'\x04', '\x00', '\x00', '\x00', 'a', 'b', 'c', '\x00', '\x00'}, 0},
			{"zero length", []byte{'\x00', '\x00', '\x00', '\x00', '\x00'}, InvalidBSON},
			{"not terminated", []byte{'\x03', '\x00', '\x00', '\x00', 'a', 'b', 'c', '\x00'}, InvalidBSON},
			{"overruns buffer", []byte{'\xFF', '\x00', '\x00', '\x00', 'a', '\x00'}, InvalidBSON},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				c := cursor{data: tc.data, pos: 0, end: uint32(len(tc.data))}
				err := c.skipString()
				if CodeOf(err) != tc.code {
					t.Errorf("Did not get expected code. got %v; want %v", CodeOf(err), tc.code)
				}
			})
		}
	})
	t.Run("Strlen", func(t *testing.T) {
		c := cursor{data: []byte{'f', 'o', 'o', '\x00', 'x'}, pos: 0, end: 5}
		n, err := c.strlen()
		if err != nil {
			t.Errorf("Unexpected error. got %v; want <nil>", err)
		}
		if n != 3 {
			t.Errorf("Wrong length. got %d; want 3", n)
		}
	})
	t.Run("StrlenUnterminated", func(t *testing.T) {
		c := cursor{data: []byte{'f', 'o', 'o'}, pos: 0, end: 3}
		_, err := c.strlen()
		if CodeOf(err) != InvalidBSON {
			t.Errorf("Expected InvalidBSON. got %v", err)
		}
	})
}

func TestReadi32(t *testing.T) {
	testCases := []struct {
		b    []byte
		want int32
	}{
		{[]byte{'\x01', '\x00', '\x00', '\x00'}, 1},
		{[]byte{'\xFF', '\xFF', '\xFF', '\xFF'}, -1},
		{[]byte{'\x00', '\x00', '\x00', '\x80'}, -2147483648},
	}
	for _, tc := range testCases {
		if got := readi32(tc.b); got != tc.want {
			t.Errorf("readi32(%v) = %d; want %d", tc.b, got, tc.want)
		}
	}
}
