// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/binary"
)

// cursor is a bounds-checked read position within a buffer. pos and end are
// offsets into data; end is exclusive. Every advance is checked against end
// before any byte past the current position is interpreted, so corrupt
// declared lengths surface as errors, never as out-of-range reads.
type cursor struct {
	data []byte
	pos  uint32
	end  uint32
}

// skip advances pos by n. The skip must leave at least one unread byte:
// both documents and columns guarantee a trailing EOO, so a skip that
// lands on or past end means a declared size overran the buffer.
func (c *cursor) skip(n uint32) error {
	pos := uint64(c.pos) + uint64(n)
	if pos >= uint64(c.end) {
		return newValidationError(InvalidBSON, "BSON size is larger than buffer size")
	}
	c.pos = uint32(pos)
	return nil
}

// readInt32 reads a little-endian int32 at the current position.
func (c *cursor) readInt32() (int32, error) {
	at := c.pos
	if err := c.skip(4); err != nil {
		return 0, err
	}
	return readi32(c.data[at:]), nil
}

// readUint32 reads a little-endian uint32 at the current position.
func (c *cursor) readUint32() (uint32, error) {
	at := c.pos
	if err := c.skip(4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.data[at:]), nil
}

// readByte reads the byte at the current position.
func (c *cursor) readByte() (byte, error) {
	at := c.pos
	if err := c.skip(1); err != nil {
		return 0, err
	}
	return c.data[at], nil
}

// skipString advances over a length-prefixed string. The declared length
// includes the terminating NUL, so it must be positive and the last skipped
// byte must be zero.
func (c *cursor) skipString() error {
	n, err := c.readUint32()
	if err != nil {
		return err
	}
	if err := c.skip(n); err != nil {
		return err
	}
	if n == 0 || c.data[c.pos-1] != 0 {
		return newValidationError(InvalidBSON, "string not null terminated")
	}
	return nil
}

// strlen returns the length of the NUL-terminated string starting at the
// current position, not including the terminator. The scan is bounded by
// end, so a missing terminator is an error rather than an overrun.
func (c *cursor) strlen() (uint32, error) {
	if c.pos >= c.end {
		return 0, newValidationError(InvalidBSON, "BSON size is larger than buffer size")
	}
	i := bytes.IndexByte(c.data[c.pos:c.end], '\x00')
	if i < 0 {
		return 0, newValidationError(InvalidBSON, "BSON size is larger than buffer size")
	}
	return uint32(i), nil
}

// readi32 is a helper function for reading an int32 from slice of bytes.
func readi32(b []byte) int32 {
	_ = b[3] // bounds check hint to compiler; see golang.org/issue/14808
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
}
