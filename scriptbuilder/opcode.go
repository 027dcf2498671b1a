// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptbuilder emits raw Bitcoin Script byte sequences for the
// leaf conditions policy.CompileToPolicy lowers clauses into. It only
// builds scripts — it does not execute them; script execution is
// consensus validation, which spec.md §1 treats as out of scope and
// leaves to the host's cryptographic library.
package scriptbuilder

// Opcode is a single Bitcoin Script opcode byte.
type Opcode byte

// The subset of opcodes the compiler's leaf conditions need. Values match
// the real Bitcoin Script opcode table exactly so emitted scripts are
// byte-compatible with any standard script interpreter.
const (
	OpFalse Opcode = 0x00
	OpData1 Opcode = 0x01
	// OpPushData1..75 are implicit: a single byte N in [1,75] pushes the
	// following N bytes. AddData below handles this directly.
	OpPushData1 Opcode = 0x4c
	OpPushData2 Opcode = 0x4d
	OpPushData4 Opcode = 0x4e
	Op1Negate   Opcode = 0x4f
	OpTrue      Opcode = 0x51
	Op1         Opcode = 0x51
	Op16        Opcode = 0x60

	OpDup         Opcode = 0x76
	OpSwap        Opcode = 0x7c
	OpDrop        Opcode = 0x75
	OpEqual       Opcode = 0x87
	OpEqualVerify Opcode = 0x88

	OpAdd Opcode = 0x93

	OpGreaterThanOrEqual Opcode = 0xa2

	OpSha256         Opcode = 0xa8
	OpCheckSig       Opcode = 0xac
	OpCheckSigVerify Opcode = 0xad
	OpCheckMultiSig  Opcode = 0xae

	OpCheckLockTimeVerify Opcode = 0xb1 // OP_NOP2 / BIP-65
	OpCheckSequenceVerify Opcode = 0xb2 // OP_NOP3 / BIP-112
	OpCheckTemplateVerify Opcode = 0xb3 // OP_NOP4 / BIP-119

	OpIf     Opcode = 0x63
	OpElse   Opcode = 0x67
	OpEndIf  Opcode = 0x68
	OpVerify Opcode = 0x69
)

// MaxStackSize mirrors the teacher's txscript.Engine limit: the combined
// height of the data and alt stacks during execution.
const MaxStackSize = 244

// MaxScriptSize is the maximum allowed length of a raw script.
const MaxScriptSize = 10000
