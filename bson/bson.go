// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// These constants uniquely refer to each BSON type.
const (
	TypeDouble           Type = 0x01
	TypeString           Type = 0x02
	TypeEmbeddedDocument Type = 0x03
	TypeArray            Type = 0x04
	TypeBinary           Type = 0x05
	TypeUndefined        Type = 0x06
	TypeObjectID         Type = 0x07
	TypeBoolean          Type = 0x08
	TypeDateTime         Type = 0x09
	TypeNull             Type = 0x0A
	TypeRegex            Type = 0x0B
	TypeDBPointer        Type = 0x0C
	TypeJavaScript       Type = 0x0D
	TypeSymbol           Type = 0x0E
	TypeCodeWithScope    Type = 0x0F
	TypeInt32            Type = 0x10
	TypeTimestamp        Type = 0x11
	TypeInt64            Type = 0x12
	TypeDecimal128       Type = 0x13
	TypeMinKey           Type = 0xFF
	TypeMaxKey           Type = 0x7F
)

// Type represents a BSON type.
type Type byte

// String returns the string representation of the BSON type's name.
func (bt Type) String() string {
	switch bt {
	case '\x01':
		return "double"
	case '\x02':
		return "string"
	case '\x03':
		return "embedded document"
	case '\x04':
		return "array"
	case '\x05':
		return "binary"
	case '\x06':
		return "undefined"
	case '\x07':
		return "objectID"
	case '\x08':
		return "boolean"
	case '\x09':
		return "UTC datetime"
	case '\x0A':
		return "null"
	case '\x0B':
		return "regex"
	case '\x0C':
		return "dbPointer"
	case '\x0D':
		return "javascript"
	case '\x0E':
		return "symbol"
	case '\x0F':
		return "code with scope"
	case '\x10':
		return "32-bit integer"
	case '\x11':
		return "timestamp"
	case '\x12':
		return "64-bit integer"
	case '\x13':
		return "128-bit decimal"
	case '\xFF':
		return "min key"
	case '\x7F':
		return "max key"
	default:
		return "invalid"
	}
}

// validationStyle classifies how the validator advances over an element of
// a given type. The skip styles directly encode the number of 4-byte words
// of payload, so the skip amount is style * 4: don't reorder them.
type validationStyle uint8

const (
	styleSkip0         validationStyle = 0 // only the type byte and field name
	styleSkip4         validationStyle = 1 // 4 additional bytes of data
	styleSkip8         validationStyle = 2 // 8 additional bytes of data
	styleSkip12        validationStyle = 3 // 12 additional bytes of data
	styleSkip16        validationStyle = 4 // 16 additional bytes of data
	styleString        validationStyle = 5 // an int32 string length (including NUL) follows
	styleObjectOrArray validationStyle = 6 // starts a new nested object or array
	styleSpecial       validationStyle = 7 // anything that doesn't fall into the above
)

// typeStyleTable maps each type byte up to TypeDecimal128 to its validation
// style. Type bytes above the table (including MinKey and MaxKey) are
// handled as special.
var typeStyleTable = [20]validationStyle{
	styleSpecial,       // \x00 EOO
	styleSkip8,         // \x01 double
	styleString,        // \x02 string
	styleObjectOrArray, // \x03 embedded document
	styleObjectOrArray, // \x04 array
	styleSpecial,       // \x05 binary
	styleSkip0,         // \x06 undefined
	styleSkip12,        // \x07 objectID
	styleSpecial,       // \x08 boolean (requires 0/1 validation)
	styleSkip8,         // \x09 UTC datetime
	styleSkip0,         // \x0A null
	styleSpecial,       // \x0B regex (two nul-terminated strings)
	styleSpecial,       // \x0C dbPointer
	styleString,        // \x0D javascript
	styleString,        // \x0E symbol
	styleSpecial,       // \x0F code with scope
	styleSkip4,         // \x10 32-bit integer
	styleSkip8,         // \x11 timestamp
	styleSkip8,         // \x12 64-bit integer
	styleSkip16,        // \x13 128-bit decimal
}
