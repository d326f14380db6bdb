// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestMaxNestingDepth(t *testing.T) {
	defer SetMaxNestingDepth(DefaultMaxNestingDepth)

	t.Run("Default", func(t *testing.T) {
		require.Equal(t, uint32(DefaultMaxNestingDepth), MaxNestingDepth())
	})
	t.Run("ZeroRestoresDefault", func(t *testing.T) {
		SetMaxNestingDepth(17)
		require.Equal(t, uint32(17), MaxNestingDepth())
		SetMaxNestingDepth(0)
		require.Equal(t, uint32(DefaultMaxNestingDepth), MaxNestingDepth())
	})
	t.Run("LoweredLimit", func(t *testing.T) {
		SetMaxNestingDepth(5)
		defer SetMaxNestingDepth(DefaultMaxNestingDepth)

		ok := nestedDocument(5)
		tooDeep := nestedDocument(6)
		if err := Validate(ok); err != nil {
			t.Errorf("Expected document at the limit to validate. got %v\n%s", err, spew.Sdump(ok))
		}
		err := Validate(tooDeep)
		require.Equal(t, Overflow, CodeOf(err))
	})
	t.Run("LimitBelowFastPathStack", func(t *testing.T) {
		// With a limit smaller than the fast mode's fixed stack, the fast
		// mode cannot enforce the limit and defers everything to precise.
		SetMaxNestingDepth(5)
		defer SetMaxNestingDepth(DefaultMaxNestingDepth)

		flat := buildDocument(int32Elem("a", 1))
		require.Error(t, newValidator(flat, false).validate())
		require.NoError(t, newValidator(flat, true).validate())
		require.NoError(t, Validate(flat))
	})
	t.Run("RaisedLimit", func(t *testing.T) {
		SetMaxNestingDepth(500)
		defer SetMaxNestingDepth(DefaultMaxNestingDepth)

		require.NoError(t, Validate(nestedDocument(400)))
		err := Validate(nestedDocument(501))
		require.Equal(t, Overflow, CodeOf(err))
	})
}
