// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// binarySubtypeColumn is the binary element subtype marking a payload as a
// BSON column.
const binarySubtypeColumn = 0x07

// Control bytes that open interleaved mode in a BSON column.
const (
	interleavedStartLegacy    = 0xF0
	interleavedStart          = 0xF1
	interleavedStartArrayRoot = 0xF2
)

// simple8bBlockSize is the size of one packed-integer block in a delta run.
// The validator never interprets block contents, only their bounds.
const simple8bBlockSize = 8

// isColumnLiteral reports whether the control byte introduces a full
// embedded BSON element: the top 3 bits are zero, so the byte doubles as
// the literal's type byte.
func isColumnLiteral(control byte) bool {
	return control&0xE0 == 0
}

// numSimple8bBlocks returns the number of 8-byte blocks that follow a
// Simple-8b control byte.
func numSimple8bBlocks(control byte) uint64 {
	return uint64(control&0x0F) + 1
}

func isInterleavedStart(control byte) bool {
	return control == interleavedStartLegacy ||
		control == interleavedStart ||
		control == interleavedStartArrayRoot
}

// ValidateColumn checks that buf holds a structurally well-formed BSON
// column: a compressed columnar encoding of a sequence of BSON values. It
// runs the control pointer through to the end of the buffer, walks over
// literal elements as directed by their measured lengths, checks the fit of
// Simple-8b block runs, scans the reference objects of interleaved mode
// starts and confirms the EOO terminations of interleaved blocks and of the
// column itself. The contents of interleaved blocks need no different
// treatment than standard literals and block runs.
//
// Grammar violations are reported as NonConformantBSON; malformed embedded
// BSON is reported as InvalidBSON.
func ValidateColumn(buf []byte) error {
	pos := uint64(0)
	end := uint64(len(buf))
	interleavedMode := false

	// Checked up front so no later field name scan can overflow the buffer.
	if len(buf) == 0 || buf[len(buf)-1] != '\x00' {
		return newValidationError(NonConformantBSON, "BSON column is missing EOO termination")
	}

	for pos < end {
		control := buf[pos]
		switch {
		case control == '\x00':
			pos++
			if interleavedMode {
				// Ends just this interleaved block, not the column.
				interleavedMode = false
				continue
			}
			// Must be the last control byte of the sequence.
			if pos != end {
				return newValidationError(NonConformantBSON, "BSON column EOO does not fully consume buffer")
			}
			return nil

		case isColumnLiteral(control):
			size, err := newValidator(buf[pos:], false).validateAndMeasureElem()
			if err != nil {
				return err
			}
			pos += uint64(size)

		case isInterleavedStart(control):
			// Interleaved blocks begin with a reference object describing
			// the shape of the records, followed by diff blocks for the
			// records themselves. Nesting interleaved mode is not allowed.
			if interleavedMode {
				return newValidationError(NonConformantBSON, "nested interleaved mode")
			}
			pos++
			ref := buf[pos:]
			if Validate(ref) != nil {
				return newValidationError(NonConformantBSON, "invalid reference object for interleaved mode")
			}
			// The reference object validated, so its length prefix is safe
			// to interpret.
			pos += uint64(uint32(readi32(ref)))
			interleavedMode = true

		default:
			// A Simple-8b block sequence: only check that the declared
			// number of blocks fits in the buffer. Decoding their packed
			// integers is the consumer's concern, not the validator's.
			size := numSimple8bBlocks(control) * simple8bBlockSize
			if pos+1+size > end {
				return newValidationError(NonConformantBSON, "BSON column blocks exceed buffer size")
			}
			pos += 1 + size
		}
	}

	// A valid column returns from the EOO case above.
	return newValidationError(NonConformantBSON, "missing terminating EOO")
}
