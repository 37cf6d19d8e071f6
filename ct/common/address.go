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
	"encoding/hex"
	"fmt"
	"strings"

	"pgregory.net/rand"
)

// Address is the 160-bit account identifier of the token domain.
type Address [20]byte

// NullAddress is the distinguished zero account. Its balance always reads
// zero, and mutating calls naming it as a primary party are required to
// revert.
var NullAddress = Address{}

func NewAddress(in U256) Address {
	return in.Bytes20be()
}

func NewAddressFromInt(in uint64) Address {
	return NewAddress(NewU256(in))
}

func (a Address) ToU256() U256 {
	return NewU256FromBytes(a[:]...)
}

func (a Address) IsNull() bool {
	return a == NullAddress
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

// MarshalText encodes the address as 0x-prefixed hex, making Address usable
// as a JSON map key.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	decoded, err := hex.DecodeString(strings.TrimPrefix(string(data), "0x"))
	if err != nil {
		return err
	}
	if len(decoded) != len(a) {
		return fmt.Errorf("invalid address length %d", len(decoded))
	}
	copy(a[:], decoded)
	return nil
}

// RandomAddress produces a uniformly distributed non-null address. The null
// address is an explicit edge case introduced by constraints, never by
// background noise.
func RandomAddress(rnd *rand.Rand) Address {
	for {
		address := Address{}
		rnd.Read(address[:]) // never returns an error
		if !address.IsNull() {
			return address
		}
	}
}
