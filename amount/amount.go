// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package amount implements the satoshi amount type spec.md §3 requires:
// a non-negative integer with saturating addition and overflow detection,
// modeled on btcsuite's Amount but with explicit saturation rather than
// silent float conversion.
package amount

import (
	"fmt"

	"github.com/pkg/errors"
)

// Amount represents a quantity of satoshis.
type Amount uint64

// MaxSatoshi is the maximum number of satoshis that will ever exist, used
// as the saturation ceiling for Add.
const MaxSatoshi = 21_000_000 * 100_000_000

// ErrOverflow is returned when an addition would exceed MaxSatoshi.
var ErrOverflow = errors.New("amount: addition overflows MaxSatoshi")

// Add returns a+b, saturating at MaxSatoshi and reporting ErrOverflow if
// saturation occurred — per spec.md §3, "all arithmetic saturates upward
// and fails compilation on overflow".
func (a Amount) Add(b Amount) (Amount, error) {
	sum := uint64(a) + uint64(b)
	if sum < uint64(a) || sum > MaxSatoshi {
		return MaxSatoshi, ErrOverflow
	}
	return Amount(sum), nil
}

// Sub returns a-b. The caller is responsible for ensuring b <= a; amounts
// are unsigned and this wraps like any uint64 subtraction otherwise.
func (a Amount) Sub(b Amount) Amount {
	return a - b
}

// String formats the amount as an integer count of satoshis.
func (a Amount) String() string {
	return fmt.Sprintf("%d sat", uint64(a))
}

// Sum totals a slice of amounts, saturating and reporting overflow exactly
// like Add.
func Sum(amounts []Amount) (Amount, error) {
	var total Amount
	var err error
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
