// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte double-SHA256 digest type used
// throughout the compiler for commitment hashes and hash-preimage clauses.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/pkg/errors"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// Hash is a 32-byte double-SHA256 digest, stored internally in the same
// byte order it is computed (not reversed for display).
type Hash [HashSize]byte

// String returns the hash as a hex-encoded string.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsEqual returns whether h equals other.
func (h *Hash) IsEqual(other *Hash) bool {
	if h == nil || other == nil {
		return h == other
	}
	return *h == *other
}

// NewHashFromStr creates a Hash from a hex string.
func NewHashFromStr(s string) (*Hash, error) {
	if len(s) != HashSize*2 {
		return nil, errors.Errorf("hash string has invalid length %d, expected %d", len(s), HashSize*2)
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding hash string")
	}
	var h Hash
	copy(h[:], buf)
	return &h, nil
}

// DoubleHashWriter accumulates bytes and produces their double-SHA256 digest
// on Finalize. It mirrors the teacher's hashserialization writer: an
// io.Writer that never itself fails, so callers may ignore write errors and
// only check the error returned by the higher-level serializer for type
// mismatches.
type DoubleHashWriter struct {
	inner hash.Hash
}

// NewDoubleHashWriter returns a fresh writer ready to accumulate bytes for
// a double-SHA256 digest.
func NewDoubleHashWriter() *DoubleHashWriter {
	return &DoubleHashWriter{inner: sha256.New()}
}

// Write implements io.Writer. It never returns an error.
func (w *DoubleHashWriter) Write(p []byte) (int, error) {
	return w.inner.Write(p)
}

// Finalize computes the double-SHA256 of everything written so far.
func (w *DoubleHashWriter) Finalize() Hash {
	first := w.inner.Sum(nil)
	second := sha256.Sum256(first)
	var out Hash
	copy(out[:], second[:])
	return out
}

// DoubleHashB computes the double-SHA256 of b directly, for callers that
// already hold the full byte slice (e.g. the final commitment hash over
// the serialized §6 fields).
func DoubleHashB(b []byte) Hash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	var out Hash
	copy(out[:], second[:])
	return out
}

// HashB computes a single SHA256 of b (used for §6 steps 4 and 6's
// per-field digests and for the P2WSH script hash of a compiled policy).
func HashB(b []byte) Hash {
	sum := sha256.Sum256(b)
	var out Hash
	copy(out[:], sum[:])
	return out
}
