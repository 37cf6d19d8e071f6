// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"math/big"

	"pgregory.net/rand"

	"github.com/holiman/uint256"
)

// U256 is the 256-bit unsigned amount type of the harness. Contrary to
// holiman/uint256.Int the API operates on values rather than pointers, and
// arithmetic reports overflow and underflow explicitly instead of wrapping
// silently. No operation panics.
type U256 struct {
	internal uint256.Int
}

// NewU256 creates a new U256 instance from up to 4 uint64 arguments. The
// arguments are given in the order from most significant to least significant
// by padding leading zeros as needed. No argument results in a value of zero.
func NewU256(args ...uint64) (result U256) {
	if len(args) > 4 {
		panic("Too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args) && i < len(result.internal); i++ {
		result.internal[3-i-offset] = args[i]
	}
	return
}

// NewU256FromBytes creates a new U256 instance from up to 32 byte arguments.
// The arguments are given in the order from most significant to least
// significant by padding leading zeros as needed.
func NewU256FromBytes(bytes ...byte) (result U256) {
	if len(bytes) > 32 {
		panic("Too many arguments")
	}
	result.internal.SetBytes(bytes)
	return
}

// RandU256 produces a uniformly distributed 256-bit value.
func RandU256(rnd *rand.Rand) U256 {
	var value U256
	value.internal[0] = rnd.Uint64()
	value.internal[1] = rnd.Uint64()
	value.internal[2] = rnd.Uint64()
	value.internal[3] = rnd.Uint64()
	return value
}

// RandU256Below produces a uniformly distributed value in [0, bound).
// A zero bound yields zero.
func RandU256Below(rnd *rand.Rand, bound U256) U256 {
	if bound.IsZero() {
		return NewU256(0)
	}
	if bound.IsUint64() {
		return NewU256(rnd.Uint64n(bound.Uint64()))
	}
	// Rejection sampling; the acceptance rate is at least 1/2 since the
	// bound occupies the topmost populated bit range.
	mask := MaxU256()
	shift := 256 - bound.internal.BitLen()
	mask.internal.Rsh(&mask.internal, uint(shift))
	for {
		candidate := RandU256(rnd)
		candidate.internal.And(&candidate.internal, &mask.internal)
		if candidate.Lt(bound) {
			return candidate
		}
	}
}

func MaxU256() (result U256) {
	result.internal.SetAllOne()
	return
}

func (i U256) IsZero() bool {
	return i.internal.IsZero()
}

func (i U256) IsUint64() bool {
	return i.internal.IsUint64()
}

func (i U256) Uint64() uint64 {
	return i.internal.Uint64()
}

func (i U256) Uint256() uint256.Int {
	return i.internal
}

func (i U256) Bytes32be() [32]byte {
	return i.internal.Bytes32()
}

func (i U256) Bytes20be() [20]byte {
	return i.internal.Bytes20()
}

func (a U256) Eq(b U256) bool {
	return a.internal.Eq(&b.internal)
}

func (a U256) Ne(b U256) bool {
	return !a.internal.Eq(&b.internal)
}

func (a U256) Lt(b U256) bool {
	return a.internal.Lt(&b.internal)
}

func (a U256) Le(b U256) bool {
	return !a.internal.Gt(&b.internal)
}

func (a U256) Gt(b U256) bool {
	return a.internal.Gt(&b.internal)
}

func (a U256) Ge(b U256) bool {
	return !a.internal.Lt(&b.internal)
}

// Add computes a+b modulo 2^256. Properties checking overflow behavior must
// use AddOverflow instead.
func (a U256) Add(b U256) (z U256) {
	z.internal.Add(&a.internal, &b.internal)
	return
}

// AddOverflow computes a+b and reports whether the exact sum exceeds the
// maximum representable value.
func (a U256) AddOverflow(b U256) (z U256, overflow bool) {
	_, overflow = z.internal.AddOverflow(&a.internal, &b.internal)
	return
}

// Sub computes a-b modulo 2^256.
func (a U256) Sub(b U256) (z U256) {
	z.internal.Sub(&a.internal, &b.internal)
	return
}

// CheckedSub computes a-b and reports success. The difference is only
// meaningful if a >= b; otherwise ok is false and z is zero.
func (a U256) CheckedSub(b U256) (z U256, ok bool) {
	if a.internal.Lt(&b.internal) {
		return U256{}, false
	}
	z.internal.Sub(&a.internal, &b.internal)
	return z, true
}

// Div computes a/b, with a zero divisor yielding zero.
func (a U256) Div(b U256) (z U256) {
	z.internal.Div(&a.internal, &b.internal)
	return
}

func (i U256) String() string {
	if i.IsUint64() {
		return fmt.Sprintf("%d", i.Uint64())
	}
	return fmt.Sprintf("%016x %016x %016x %016x", i.internal[3], i.internal[2], i.internal[1], i.internal[0])
}

// MarshalText encodes the value as 0x-prefixed hex, making U256 usable as a
// JSON map key.
func (i U256) MarshalText() ([]byte, error) {
	return i.internal.MarshalText()
}

func (i *U256) UnmarshalText(data []byte) error {
	return i.internal.UnmarshalText(data)
}

// ToBig returns a bigInt version of i.
func (i U256) ToBig() *big.Int {
	return i.internal.ToBig()
}

// U256FromBig returns a U256 version of b. Negative values map to zero; values
// exceeding 256 bits are truncated.
func U256FromBig(b *big.Int) U256 {
	result := NewU256()
	if b.Sign() < 0 {
		return result
	}
	result.internal.SetFromBig(b)
	return result
}
