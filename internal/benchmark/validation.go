// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ikmak/bson-validate/bson"
)

const (
	largeBinarySize  = 64 * 1024
	columnBufferSize = 512
)

var (
	flatDocument = makeFlatDocument()
	deepDocument = makeNestedDocument(20)
	largeBinary  = makeBinaryDocument(largeBinarySize)
	columnBuffer = makeColumnBuffer()
)

// ValidateFlatDocument times validation of a small flat document.
func ValidateFlatDocument(ctx context.Context, iters int) error {
	return validateLoop(ctx, iters, flatDocument)
}

// ValidateDeepDocument times validation of a 20-level nested document,
// which always takes the precise path.
func ValidateDeepDocument(ctx context.Context, iters int) error {
	return validateLoop(ctx, iters, deepDocument)
}

// ValidateLargeBinary times validation of a document dominated by one
// binary payload.
func ValidateLargeBinary(ctx context.Context, iters int) error {
	return validateLoop(ctx, iters, largeBinary)
}

// ValidateColumnBuffer times column validation of a literal-and-blocks mix.
func ValidateColumnBuffer(ctx context.Context, iters int) error {
	for i := 0; i < iters; i++ {
		if err := bson.ValidateColumn(columnBuffer); err != nil {
			return errors.Wrap(err, "column benchmark corpus failed validation")
		}
	}
	return ctx.Err()
}

func validateLoop(ctx context.Context, iters int, doc []byte) error {
	for i := 0; i < iters; i++ {
		if err := bson.Validate(doc); err != nil {
			return errors.Wrap(err, "benchmark corpus failed validation")
		}
	}
	return ctx.Err()
}

func beginDocument() []byte {
	return []byte{'\x00', '\x00', '\x00', '\x00'}
}

func finishDocument(doc []byte) []byte {
	doc = append(doc, '\x00')
	binary.LittleEndian.PutUint32(doc[0:4], uint32(len(doc)))
	return doc
}

func appendInt32Elem(doc []byte, name string, v int32) []byte {
	doc = append(doc, '\x10')
	doc = append(doc, name...)
	doc = append(doc, '\x00')
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return append(doc, b[:]...)
}

func appendStrElem(doc []byte, name, s string) []byte {
	doc = append(doc, '\x02')
	doc = append(doc, name...)
	doc = append(doc, '\x00')
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(s)+1))
	doc = append(doc, b[:]...)
	doc = append(doc, s...)
	return append(doc, '\x00')
}

func makeFlatDocument() []byte {
	doc := beginDocument()
	doc = appendInt32Elem(doc, "count", 42)
	doc = appendStrElem(doc, "name", "validation benchmark corpus")
	doc = appendInt32Elem(doc, "index", 7)
	return finishDocument(doc)
}

func makeNestedDocument(depth int) []byte {
	doc := finishDocument(appendInt32Elem(beginDocument(), "leaf", 1))
	for i := 0; i < depth; i++ {
		outer := append(beginDocument(), '\x03')
		outer = append(outer, "d\x00"...)
		outer = append(outer, doc...)
		doc = finishDocument(outer)
	}
	return doc
}

func makeBinaryDocument(size int) []byte {
	doc := append(beginDocument(), '\x05')
	doc = append(doc, "payload\x00"...)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(size))
	doc = append(doc, b[:]...)
	doc = append(doc, '\x00') // generic subtype
	doc = append(doc, make([]byte, size)...)
	return finishDocument(doc)
}

func makeColumnBuffer() []byte {
	var col []byte
	for len(col) < columnBufferSize-10 {
		// One int32 literal, then a run of two Simple-8b blocks.
		col = append(col, '\x10', '\x00', '\x01', '\x00', '\x00', '\x00')
		col = append(col, 0x81)
		col = append(col, make([]byte, 16)...)
	}
	return append(col, '\x00')
}
