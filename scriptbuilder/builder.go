// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scriptbuilder

import "github.com/pkg/errors"

// ScriptBuilder provides a facility for building custom scripts. It
// allows the constructed script to exceed the MaxScriptSize only up to
// the point a caller asks for the final bytes, mirroring the teacher's
// txscript engine's own size ceiling so the two stay consistent.
type ScriptBuilder struct {
	script []byte
	err    error
}

// NewScriptBuilder returns a new instance of a script builder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, 32)}
}

// AddOp pushes the passed opcode to the end of the script.
func (b *ScriptBuilder) AddOp(op Opcode) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, byte(op))
	return b.checkSize()
}

// AddInt64 pushes the passed integer using the minimal encoding Bitcoin
// Script expects: OP_FALSE for 0, OP_1..OP_16 for 1..16, and a minimally
// encoded data push otherwise.
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if val == 0 {
		return b.AddOp(OpFalse)
	}
	if val >= 1 && val <= 16 {
		return b.AddOp(Opcode(int64(Op1) - 1 + val))
	}
	if val == -1 {
		return b.AddOp(Op1Negate)
	}
	return b.AddData(serializeScriptNum(val))
}

// AddData pushes the passed data to the end of the script, using the
// smallest canonical push opcode for its length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case len(data) < int(OpPushData1):
		b.script = append(b.script, byte(len(data)))
	case len(data) <= 0xff:
		b.script = append(b.script, byte(OpPushData1), byte(len(data)))
	case len(data) <= 0xffff:
		buf := []byte{byte(OpPushData2), byte(len(data)), byte(len(data) >> 8)}
		b.script = append(b.script, buf...)
	default:
		buf := []byte{
			byte(OpPushData4),
			byte(len(data)), byte(len(data) >> 8),
			byte(len(data) >> 16), byte(len(data) >> 24),
		}
		b.script = append(b.script, buf...)
	}
	b.script = append(b.script, data...)
	return b.checkSize()
}

// AppendRaw splices an already-built sub-script onto the end of this
// one, letting callers compose scripts out of independently lowered
// fragments (policy's And/Or/threshold combinators) instead of
// re-walking opcodes one at a time.
func (b *ScriptBuilder) AppendRaw(raw []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, raw...)
	return b.checkSize()
}

func (b *ScriptBuilder) checkSize() *ScriptBuilder {
	if len(b.script) > MaxScriptSize {
		b.err = errors.Errorf("script size %d exceeds maximum allowed size %d", len(b.script), MaxScriptSize)
	}
	return b
}

// Script returns the script constructed so far, or the first error
// encountered while building it.
func (b *ScriptBuilder) Script() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]byte, len(b.script))
	copy(out, b.script)
	return out, nil
}

// serializeScriptNum encodes val the way Bitcoin Script encodes numbers
// pushed onto the stack: little-endian, minimal, sign-magnitude.
func serializeScriptNum(val int64) []byte {
	if val == 0 {
		return nil
	}

	negative := val < 0
	absVal := val
	if negative {
		absVal = -val
	}

	var result []byte
	for absVal > 0 {
		result = append(result, byte(absVal&0xff))
		absVal >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		if negative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if negative {
		result[len(result)-1] |= 0x80
	}

	return result
}
