// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Validate checks that buf holds a single structurally well-formed BSON
// document. It never reads past the end of buf and never panics on
// malformed input; failures are returned as a ValidationError tagged with
// InvalidBSON, NonConformantBSON or Overflow.
//
// Validation runs in a fast mode first. The fast mode fails for documents
// containing code-with-scope elements or more than 31 levels of nesting in
// addition to actual malformations, so any fast-mode failure triggers a
// precise re-run whose error carries the full diagnostic context.
func Validate(buf []byte) error {
	if err := newValidator(buf, false).validate(); err == nil {
		return nil
	}
	return newValidator(buf, true).validate()
}

// frame is one level of nesting being validated: an embedded object, array
// or code-with-scope scope. end is the expected end offset of the level,
// computed from its length prefix when the frame is pushed and compared
// against the position of its EOO byte when it is popped.
type frame struct {
	end  uint64
	elem uint32 // precise mode: offset of the owning element's type byte
	typ  Type   // precise mode: type of the owning element, 0 for a scope
}

// validator walks one candidate buffer. The fast mode keeps its frames in
// the fixed-size array and tracks no per-frame element metadata; the
// precise mode allocates a stack sized to the configured maximum depth and
// records the owning element of every frame for diagnostics.
type validator struct {
	data    []byte
	precise bool

	frames []frame
	cur    int // index of the frame currently being validated

	elem   int64 // offset of the element being validated, -1 before the first
	idElem int64 // offset of the validated top-level _id element, -1 if none

	fixed [fastPathFrames]frame
}

func newValidator(data []byte, precise bool) *validator {
	v := &validator{data: data, precise: precise, elem: -1, idElem: -1}
	if precise {
		v.frames = make([]frame, MaxNestingDepth()+1)
	} else {
		v.frames = v.fixed[:]
	}
	return v
}

func (v *validator) setup() error {
	v.cur = 0
	v.elem = -1
	// A flat document uses exactly one frame.
	maxFrames := uint64(MaxNestingDepth()) + 1
	if uint64(len(v.frames)) > maxFrames {
		return newValidationError(InvalidBSON, "cannot enforce max nesting depth")
	}
	return nil
}

// validate checks the entire document at the start of the buffer. Any
// failure is annotated with the element context built from the walk state.
func (v *validator) validate() error {
	err := v.run()
	if err == nil {
		return nil
	}
	if verr, ok := err.(ValidationError); ok {
		verr.Context = v.context()
		return verr
	}
	return err
}

func (v *validator) run() error {
	if err := v.setup(); err != nil {
		return err
	}
	if len(v.data) < 5 {
		return newValidationError(InvalidBSON, "BSON data has to be at least 5 bytes")
	}

	// Read the length as a signed integer, to limit it to < 2GB. All other
	// lengths are read as unsigned, which makes for easier bounds checking.
	c := cursor{data: v.data, pos: 0, end: uint32(len(v.data))}
	length, err := c.readInt32()
	if err != nil {
		return err
	}
	if length < 5 {
		return newValidationError(InvalidBSON, "BSON data has to be at least 5 bytes")
	}
	if int64(length) > int64(len(v.data)) {
		return newValidationError(InvalidBSON, "incorrect BSON length")
	}
	end := uint32(length)
	v.frames[0].end = uint64(end)
	if v.data[end-1] != 0 {
		return newValidationError(InvalidBSON, "BSON object not terminated with EOO")
	}
	return v.validateIterative(cursor{data: v.data, pos: c.pos, end: end})
}

// validateAndMeasureElem validates a single field-name-less literal element
// at the start of the buffer and returns the number of bytes it spans.
// Bytes following the literal are permitted to remain in the buffer and are
// not validated. Used by the column validator, which embeds literals
// mid-stream.
func (v *validator) validateAndMeasureElem() (uint32, error) {
	if err := v.setup(); err != nil {
		return 0, err
	}
	// There must at least be a field name terminator after the type byte.
	if len(v.data) < 2 {
		return 0, newValidationError(InvalidBSON, "BSON literal is not followed by fieldname")
	}
	if v.data[1] != '\x00' {
		return 0, newValidationError(NonConformantBSON, "BSON literal content does not have an empty fieldname")
	}

	// Handle the one element without the iterative loop and without
	// expecting further elements or an EOO. The loop only resumes if the
	// frame stack grew, meaning the literal is an object or array.
	c := cursor{data: v.data, pos: 2, end: uint32(len(v.data))}
	v.elem = 0
	if err := v.validateElem(&c, Type(v.data[0])); err != nil {
		return 0, err
	}

	if v.cur == 0 {
		// A scalar literal: the cursor position is its size.
		v.frames[0].end = uint64(c.pos)
		return c.pos, nil
	}

	// The type was object or array, so the size is the type byte, the
	// empty field name and the stored int32 length.
	size := 2 + uint64(uint32(readi32(v.data[2:])))
	if size > uint64(len(v.data)) {
		return 0, newValidationError(InvalidBSON, "BSON literal content exceeds buffer size")
	}
	v.frames[0].end = size
	internalEnd := v.frames[v.cur].end
	v.cur--
	if v.frames[v.cur].end != internalEnd {
		return 0, newValidationError(InvalidBSON, "BSON literal nested content does not end at external end")
	}
	if err := v.validateIterative(cursor{data: v.data, pos: c.pos, end: uint32(size)}); err != nil {
		return 0, err
	}
	return uint32(size), nil
}

// validateIterative walks elements and frame transitions until the
// outermost frame is closed. Nesting is tracked on the explicit frame
// stack, never via call-stack recursion, so hostile depth cannot exhaust
// the machine stack.
func (v *validator) validateIterative(c cursor) error {
	for {
		// The EOO byte is 0, just like the end of a string, so checking for
		// EOO is the same as finding a zero-length name. The scan covers
		// the type byte too, which is never 0 for a real element.
		for {
			n, err := c.strlen()
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			t := Type(c.data[c.pos])
			v.elem = int64(c.pos)
			c.pos += n + 1
			if err := v.validateElem(&c, t); err != nil {
				return err
			}

			if v.precise && v.cur == 0 && v.fieldNameAt(uint32(v.elem)) == "_id" {
				// The top-level _id element is fully validated at this
				// point; remember it so diagnostics on later fields can
				// identify the document.
				v.idElem = v.elem
			}
		}

		// Got the EOO byte: skip it and compare its position with the
		// frame end recorded when the frame was pushed. The end must match
		// exactly, not merely contain it.
		c.pos++
		if uint64(c.pos) != v.frames[v.cur].end {
			return newValidationError(InvalidBSON, "incorrect BSON length")
		}
		if err := v.maybePopCodeWithScope(&c); err != nil {
			return err
		}
		if v.cur == 0 {
			return nil
		}
		v.cur--
	}
}

func (v *validator) validateElem(c *cursor, t Type) error {
	if t > TypeDecimal128 {
		return v.validateSpecial(c, t)
	}

	switch style := typeStyleTable[t]; {
	case style <= styleSkip16:
		return c.skip(uint32(style) * 4)
	case style == styleString:
		return c.skipString()
	case style == styleObjectOrArray:
		return v.pushFrame(c)
	case v.precise && t == TypeCodeWithScope:
		return v.pushCodeWithScope(c)
	default:
		return v.validateSpecial(c, t)
	}
}

func (v *validator) validateSpecial(c *cursor, t Type) error {
	switch t {
	case TypeBinary:
		count, err := c.readUint32()
		if err != nil {
			return err
		}
		subtype, err := c.readByte()
		if err != nil {
			return err
		}
		start := c.pos
		if err := c.skip(count); err != nil {
			return err
		}
		if subtype == binarySubtypeColumn {
			// Hand the column validator the payload bytes rather than the
			// cursor: the nested validation gets a fresh nesting budget,
			// independent of this document's depth.
			if ValidateColumn(v.data[start:start+count]) != nil {
				return newValidationError(NonConformantBSON, "invalid BSON column")
			}
		}
	case TypeBoolean:
		b, err := c.readByte()
		if err != nil {
			return err
		}
		if b > 1 {
			return newValidationError(InvalidBSON, "BSON bool is neither false nor true")
		}
	case TypeRegex:
		// Two consecutive NUL-terminated strings with no length prefix:
		// the pattern and the options.
		if err := c.skip(0); err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			n, err := c.strlen()
			if err != nil {
				return err
			}
			if err := c.skip(n + 1); err != nil {
				return err
			}
		}
	case TypeDBPointer:
		if err := c.skipString(); err != nil { // like String, but...
			return err
		}
		if err := c.skip(12); err != nil { // ...also skip the 12-byte ObjectID
			return err
		}
	case TypeMinKey, TypeMaxKey:
		// No payload: just confirm the position after the field name.
		if err := c.skip(0); err != nil {
			return err
		}
	default:
		return newValidationErrorf(InvalidBSON, "unrecognized BSON type %d", byte(t))
	}
	return nil
}

// pushFrame opens a new nesting level whose expected end is taken from the
// embedded int32 length at the cursor.
func (v *validator) pushFrame(c *cursor) error {
	if v.cur+1 >= len(v.frames) {
		return newValidationError(Overflow, "BSON object exceeds maximum nested object depth")
	}
	v.cur++

	obj := c.pos
	length, err := c.readInt32()
	if err != nil {
		return err
	}
	if length < 5 {
		return newValidationError(InvalidBSON, "nested BSON object has to be at least 5 bytes")
	}

	f := &v.frames[v.cur]
	f.end = uint64(obj) + uint64(uint32(length))
	if v.precise {
		f.elem = uint32(v.elem)
		f.typ = Type(v.data[v.elem])
	}
	return nil
}

// pushCodeWithScope handles a code-with-scope element in precise mode: a
// dummy frame checks the element's declared total size, the code string is
// skipped, and the scope document gets its own frame with the string's
// terminator standing in as a zero-length field name, so the ordinary
// frame-exit logic applies to it.
func (v *validator) pushCodeWithScope(c *cursor) error {
	if err := v.pushFrame(c); err != nil {
		return err
	}
	if err := c.skipString(); err != nil {
		return err
	}
	v.elem = int64(c.pos) - 1
	return v.pushFrame(c)
}

// maybePopCodeWithScope pops the dummy outer frame of a code-with-scope
// element when its scope frame is being closed, and verifies the dummy
// frame's declared size too.
func (v *validator) maybePopCodeWithScope(c *cursor) error {
	if !v.precise {
		return nil
	}
	if v.cur > 0 && v.frames[v.cur-1].typ == TypeCodeWithScope {
		v.cur--
		if uint64(c.pos) != v.frames[v.cur].end {
			return newValidationError(InvalidBSON, "incorrect BSON length")
		}
	}
	return nil
}

// fieldNameAt returns the field name of the element whose type byte is at
// off. Only called with offsets whose name was already scanned in bounds.
func (v *validator) fieldNameAt(off uint32) string {
	return cstringAt(v.data, off+1)
}

// context returns a string qualifying where validation stopped, e.g.
// "in element with field name 'foo.bar' in object with _id: 1". The dotted
// path and the _id rendering are only available in precise mode.
func (v *validator) context() string {
	var b bytes.Buffer
	b.WriteString("in element with field name '")
	if v.precise {
		for i := 1; i <= v.cur; i++ {
			f := v.frames[i]
			if f.typ != 0 {
				b.WriteString(v.fieldNameAt(f.elem))
			}
			b.WriteByte('.')
		}
	}
	if v.elem >= 0 {
		b.WriteString(v.fieldNameAt(uint32(v.elem)))
	} else {
		b.WriteByte('?')
	}
	b.WriteByte('\'')

	if v.precise {
		b.WriteString(" in object with ")
		if v.idElem >= 0 {
			b.WriteString(renderElement(v.data, uint32(v.idElem)))
		} else {
			b.WriteString("unknown _id")
		}
	}
	return b.String()
}

// cstringAt reads the NUL-terminated string at off, bounded by the end of
// data in case the offset's element was never fully validated.
func cstringAt(data []byte, off uint32) string {
	if off >= uint32(len(data)) {
		return ""
	}
	i := bytes.IndexByte(data[off:], '\x00')
	if i < 0 {
		return string(data[off:])
	}
	return string(data[off : off+uint32(i)])
}

// renderElement formats a fully validated element for diagnostics, e.g.
// "_id: 1". Types without a compact scalar form render as the type name.
func renderElement(data []byte, off uint32) string {
	t := Type(data[off])
	name := cstringAt(data, off+1)
	val := off + 1 + uint32(len(name)) + 1
	switch t {
	case TypeDouble:
		f := math.Float64frombits(binary.LittleEndian.Uint64(data[val:]))
		return fmt.Sprintf("%s: %g", name, f)
	case TypeString, TypeJavaScript, TypeSymbol:
		n := binary.LittleEndian.Uint32(data[val:])
		return fmt.Sprintf("%s: %q", name, data[val+4:val+4+n-1])
	case TypeBoolean:
		return fmt.Sprintf("%s: %v", name, data[val] == 1)
	case TypeInt32:
		return fmt.Sprintf("%s: %d", name, readi32(data[val:]))
	case TypeInt64:
		return fmt.Sprintf("%s: %d", name, int64(binary.LittleEndian.Uint64(data[val:])))
	case TypeDateTime:
		return fmt.Sprintf("%s: new Date(%d)", name, int64(binary.LittleEndian.Uint64(data[val:])))
	case TypeObjectID:
		return fmt.Sprintf("%s: ObjectID(%q)", name, hex.EncodeToString(data[val:val+12]))
	case TypeNull:
		return name + ": null"
	default:
		return name + ": " + t.String()
	}
}
