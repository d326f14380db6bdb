// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func ExampleReader_Validate() {
	rdr := make(Reader, 500)
	rdr[250], rdr[251], rdr[252], rdr[253], rdr[254] = '\x05', '\x00', '\x00', '\x00', '\x00'
	n, err := rdr[250:].Validate()
	fmt.Println(n, err)

	// Output: 5 <nil>
}

func TestReader(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		t.Run("TooShort", func(t *testing.T) {
			_, got := Reader{'\x00', '\x00'}.Validate()
			if CodeOf(got) != InvalidBSON {
				t.Errorf("Did not get expected error. got %v; want InvalidBSON", got)
			}
		})
		t.Run("InvalidLength", func(t *testing.T) {
			r := make(Reader, 5)
			binary.LittleEndian.PutUint32(r[0:4], 200)
			_, got := r.Validate()
			if CodeOf(got) != InvalidBSON {
				t.Errorf("Did not get expected error. got %v; want InvalidBSON", got)
			}
		})
		t.Run("OnlyValidatesFirstDocument", func(t *testing.T) {
			first := buildDocument(int32Elem("a", 1))
			r := Reader(append(append([]byte{}, first...), '\xFF', '\xFF'))
			n, err := r.Validate()
			require.NoError(t, err)
			require.Equal(t, uint32(len(first)), n)
		})
		t.Run("Size", func(t *testing.T) {
			doc := buildDocument(strElem("hello", "world"))
			n, err := Reader(doc).Validate()
			require.NoError(t, err)
			require.Equal(t, uint32(len(doc)), n)
		})
	})
	t.Run("ValidateColumn", func(t *testing.T) {
		col := append(int32Literal(7), '\x00')
		require.NoError(t, Reader(col).ValidateColumn())
	})
}

func TestNewFromIOReader(t *testing.T) {
	testCases := []struct {
		name        string
		ioReader    io.Reader
		expectedErr error
	}{
		{"nil reader", nil, ErrNilReader},
		{"premature end of reader", bytes.NewBuffer([]byte{}), io.EOF},
		{"invalid length", bytes.NewBuffer([]byte{'\x00', '\x00', '\x00', '\x00'}), ErrInvalidLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFromIOReader(tc.ioReader)
			require.Equal(t, tc.expectedErr, err)
		})
	}

	t.Run("reads one document", func(t *testing.T) {
		doc := buildDocument(int32Elem("a", 1))
		stream := append(append([]byte{}, doc...), "trailing"...)
		r, err := NewFromIOReader(bytes.NewBuffer(stream))
		require.NoError(t, err)
		require.Equal(t, Reader(doc), r)

		_, err = r.Validate()
		require.NoError(t, err)
	})
	t.Run("short document body", func(t *testing.T) {
		doc := buildDocument(int32Elem("a", 1))
		_, err := NewFromIOReader(bytes.NewBuffer(doc[:len(doc)-2]))
		require.Equal(t, io.ErrUnexpectedEOF, err)
	})
}
