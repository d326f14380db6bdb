// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson implements structural validation of BSON documents and BSON
// column buffers.
//
// The validators in this package decide whether an untrusted byte buffer is
// a well-formed, memory-safe-to-interpret encoding. They never decode the
// buffer into a document tree and they never read past the end of the
// buffer, no matter how the input was corrupted or constructed.
//
//	if err := bson.Validate(buf); err != nil {
//		log.Print(err)
//	}
//
// Validate runs a fast validation pass first and repeats the walk in a
// slower precise mode only when the fast pass fails, so well-formed
// documents pay the fast-path cost while malformed ones get an error with
// full context, such as:
//
//	incorrect BSON length in element with field name 'a.b' in object with _id: 1
//
// ValidateColumn checks the BSON column (compressed columnar) encoding,
// delegating embedded literals and interleaved reference objects to the
// document validator.
package bson
