// Copyright (c) 2017 Takatoshi Nakagawa
// Copyright (c) 2019 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bech32 implements the BIP-173 encoding used to render the
// compiler's on-chain address output (spec.md §6, "P2WSH (or P2TR ...)").
package bech32

import (
	"strings"

	"github.com/pkg/errors"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var charsetRev = buildCharsetRev()

func buildCharsetRev() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range charset {
		rev[c] = int8(i)
	}
	return rev
}

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// convertBits regroups a slice of bytes, each holding fromBits significant
// bits, into a slice of bytes each holding toBits significant bits.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	var out []byte
	maxv := uint32(1<<toBits) - 1
	for _, value := range data {
		if value>>fromBits != 0 {
			return nil, errors.Errorf("invalid data byte %d for %d-bit input", value, fromBits)
		}
		acc = (acc << fromBits) | uint32(value)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, errors.New("invalid padding in bit conversion")
	}
	return out, nil
}

// Encode renders hrp and a witness-version-prefixed program as a bech32
// string, matching the teacher's util.Address encoding call shape:
// bech32.Encode(prefix, hash160, version).
func Encode(hrp string, program []byte, version byte) (string, error) {
	if version > 16 {
		return "", errors.Errorf("witness version %d out of range [0,16]", version)
	}
	converted, err := convertBits(program, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "converting program to 5-bit groups")
	}
	data := append([]byte{version}, converted...)
	checksum := createChecksum(hrp, data)
	combined := append(data, checksum...)

	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range combined {
		sb.WriteByte(charset[b])
	}
	return sb.String(), nil
}

// Decode parses a bech32 string into its human-readable prefix, decoded
// program bytes, and witness version.
func Decode(addr string) (hrp string, program []byte, version byte, err error) {
	if len(addr) < 8 || len(addr) > 90 {
		return "", nil, 0, errors.New("bech32 string has invalid length")
	}
	lower := strings.ToLower(addr)
	upper := strings.ToUpper(addr)
	if addr != lower && addr != upper {
		return "", nil, 0, errors.New("bech32 string has mixed case")
	}
	addr = lower

	sep := strings.LastIndexByte(addr, '1')
	if sep < 1 || sep+7 > len(addr) {
		return "", nil, 0, errors.New("bech32 string missing separator")
	}
	hrp = addr[:sep]
	dataPart := addr[sep+1:]

	decoded := make([]byte, len(dataPart))
	for i, c := range dataPart {
		if c > 127 || charsetRev[c] == -1 {
			return "", nil, 0, errors.Errorf("invalid bech32 character %q", c)
		}
		decoded[i] = byte(charsetRev[c])
	}

	if !verifyChecksum(hrp, decoded) {
		return "", nil, 0, errors.New("invalid bech32 checksum")
	}

	payload := decoded[:len(decoded)-6]
	version = payload[0]
	program, err = convertBits(payload[1:], 5, 8, false)
	if err != nil {
		return "", nil, 0, errors.Wrap(err, "converting program from 5-bit groups")
	}
	return hrp, program, version, nil
}
