// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clause

import (
	"encoding/hex"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// PublicKey wraps the Schnorr public key a Key clause is keyed on. It
// never signs or verifies — spec.md §1 treats signature-hash primitives
// as a provided cryptographic library — it only needs to compare,
// serialize, and render keys deterministically across compilations.
type PublicKey struct {
	inner *secp256k1.SchnorrPublicKey
	raw   []byte
}

// NewPublicKeyFromBytes parses a serialized Schnorr public key in the
// same compressed encoding SchnorrPublicKey.SerializeCompressed
// produces.
func NewPublicKeyFromBytes(data []byte) (*PublicKey, error) {
	pk, err := secp256k1.DeserializeSchnorrPubKey(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing public key")
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &PublicKey{inner: pk, raw: raw}, nil
}

// Bytes returns the serialized form of the key as originally parsed.
func (k *PublicKey) Bytes() []byte {
	out := make([]byte, len(k.raw))
	copy(out, k.raw)
	return out
}

// String renders the key as lowercase hex, used for clause dedup keys
// and debug/test output.
func (k *PublicKey) String() string {
	return hex.EncodeToString(k.raw)
}

// Equal reports whether two public keys are the same serialized key.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.String() == other.String()
}
