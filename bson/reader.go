// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"io"
)

// ErrNilReader indicates that an operation was attempted on a nil io.Reader.
var ErrNilReader = errors.New("nil reader")

// ErrInvalidLength indicates that a document's declared length is invalid.
var ErrInvalidLength = errors.New("document length is invalid")

// Reader is a wrapper around a byte slice. It will interpret the slice as a
// BSON document. This type only carries the validation surface; it never
// decodes the document.
type Reader []byte

// Validate validates the document. This method only validates the first
// document in the slice, to validate other documents, the slice must be
// resliced. It returns the validated document's total size.
func (r Reader) Validate() (uint32, error) {
	if err := Validate(r); err != nil {
		return 0, err
	}
	// Validate confirmed the length prefix is present and within bounds.
	return uint32(readi32(r[0:4])), nil
}

// ValidateColumn validates the slice as a BSON column buffer.
func (r Reader) ValidateColumn() error {
	return ValidateColumn(r)
}

// NewFromIOReader reads a single document from the given io.Reader and
// constructs a bson.Reader from it. The returned Reader is not yet
// validated.
func NewFromIOReader(r io.Reader) (Reader, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	var lengthBytes [4]byte

	count, err := io.ReadFull(r, lengthBytes[:])
	if err != nil {
		return nil, err
	}

	if count < 4 {
		return nil, newValidationError(InvalidBSON, "BSON data has to be at least 5 bytes")
	}

	length := readi32(lengthBytes[:])
	if length < 5 {
		return nil, ErrInvalidLength
	}
	reader := make([]byte, length)

	copy(reader, lengthBytes[:])

	count, err = io.ReadFull(r, reader[4:])
	if err != nil {
		return nil, err
	}

	if int32(count) != length-4 {
		return nil, ErrInvalidLength
	}

	return reader, nil
}
