// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// DefaultMaxNestingDepth is the default maximum nesting depth accepted by
// the validators, matching the server's document depth limit.
const DefaultMaxNestingDepth = 200

// fastPathFrames is the fixed frame capacity of the fast validation mode.
// A flat document uses one frame, so this allows 31 levels of nesting
// before the fast mode defers to the precise mode.
const fastPathFrames = 32

var maxNestingDepth uint32 = DefaultMaxNestingDepth

// MaxNestingDepth returns the process-wide maximum nesting depth enforced
// by Validate and ValidateColumn.
func MaxNestingDepth() uint32 { return maxNestingDepth }

// SetMaxNestingDepth configures the process-wide maximum nesting depth. A
// depth of zero restores the default. The value is read at validation time
// and is meant to be set once during startup; it is not safe to change
// while validations are in flight.
func SetMaxNestingDepth(depth uint32) {
	if depth == 0 {
		depth = DefaultMaxNestingDepth
	}
	maxNestingDepth = depth
}
