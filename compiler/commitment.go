package compiler

import (
	"github.com/pkg/errors"

	"github.com/covenantc/compiler/address"
	"github.com/covenantc/compiler/chainhash"
	"github.com/covenantc/compiler/scriptbuilder"
)

// templateVersion is the fixed nVersion field folded into every
// commitment hash. Template carries no version of its own (spec.md §3
// doesn't give it one); the commitment hash is re-expressed here for the
// (lock_time, sequences, outputs) triple rather than a full transaction,
// per SPEC_FULL.md §6, so a single constant stands in for it.
const templateVersion uint32 = 2

// ComputeCommitmentHash implements spec.md §6's bit-exact, BIP-119-style
// commitment hash: double-SHA256 over version, lock_time, input count,
// a digest of input sequences, output count, a digest of serialized
// outputs, and the spending input index.
func ComputeCommitmentHash(lockTime uint32, sequences []uint32, outputs []Output, inputIndex uint32) (chainhash.Hash, error) {
	outputBytes, err := serializeOutputs(outputs)
	if err != nil {
		return chainhash.Hash{}, errors.Wrap(err, "serializing outputs")
	}
	outputsHash := chainhash.HashB(outputBytes)

	sequenceBytes := make([]byte, 0, 4*len(sequences))
	for _, s := range sequences {
		sequenceBytes = appendUint32LE(sequenceBytes, s)
	}
	sequencesHash := chainhash.HashB(sequenceBytes)

	buf := make([]byte, 0, 4+4+4+32+4+32+4)
	buf = appendUint32LE(buf, templateVersion)
	buf = appendUint32LE(buf, lockTime)
	buf = appendUint32LE(buf, uint32(len(sequences)))
	buf = append(buf, sequencesHash[:]...)
	buf = appendUint32LE(buf, uint32(len(outputs)))
	buf = append(buf, outputsHash[:]...)
	buf = appendUint32LE(buf, inputIndex)

	return chainhash.DoubleHashB(buf), nil
}

// serializeOutputs renders outputs the way a real Bitcoin transaction
// serializes its txouts: 8-byte little-endian amount followed by a
// compact-size script length and the scriptPubKey bytes.
func serializeOutputs(outputs []Output) ([]byte, error) {
	var buf []byte
	for _, o := range outputs {
		addr := o.resolvedAddress()
		if addr == nil {
			return nil, errors.New("output has no resolved on-chain address")
		}
		script, err := scriptPubKeyFor(addr)
		if err != nil {
			return nil, err
		}
		buf = appendUint64LE(buf, uint64(o.Amount))
		buf = appendVarInt(buf, uint64(len(script)))
		buf = append(buf, script...)
	}
	return buf, nil
}

// scriptPubKeyFor renders the standard segwit scriptPubKey for addr: a
// witness-version push followed by a push of its program.
func scriptPubKeyFor(addr address.Address) ([]byte, error) {
	b := scriptbuilder.NewScriptBuilder()
	version := addr.WitnessVersion()
	if version == 0 {
		b.AddOp(scriptbuilder.OpFalse)
	} else {
		b.AddInt64(int64(version))
	}
	b.AddData(addr.ScriptPubKeyProgram())
	return b.Script()
}

func appendUint32LE(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendUint64LE(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
	)
}

// appendVarInt encodes v using Bitcoin's compact-size format.
func appendVarInt(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= 0xffff:
		return append(buf, 0xfd, byte(v), byte(v>>8))
	case v <= 0xffffffff:
		return append(buf, 0xfe, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	default:
		return append(buf, 0xff,
			byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
		)
	}
}
