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
	"testing"

	"pgregory.net/rand"
)

func TestAddress_U256ConversionRoundTrips(t *testing.T) {
	rnd := rand.New(0)
	for i := 0; i < 100; i++ {
		address := RandomAddress(rnd)
		if restored := NewAddress(address.ToU256()); restored != address {
			t.Fatalf("round trip of %v produced %v", address, restored)
		}
	}
}

func TestAddress_ConversionTruncatesToLower160Bits(t *testing.T) {
	value := NewU256(1, 2, 3, 4)
	address := NewAddress(value)
	if got, want := address.ToU256(), NewU256(2, 3, 4); got.Ne(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAddress_NullDetection(t *testing.T) {
	if !NullAddress.IsNull() {
		t.Errorf("null address not recognized")
	}
	if NewAddressFromInt(1).IsNull() {
		t.Errorf("non-null address flagged as null")
	}
}

func TestRandomAddress_NeverProducesNull(t *testing.T) {
	rnd := rand.New(0)
	for i := 0; i < 1000; i++ {
		if RandomAddress(rnd).IsNull() {
			t.Fatalf("random address is null")
		}
	}
}

func TestAddress_TextMarshalingRoundTrips(t *testing.T) {
	rnd := rand.New(0)
	for _, address := range []Address{NullAddress, NewAddressFromInt(42), RandomAddress(rnd)} {
		encoded, err := address.MarshalText()
		if err != nil {
			t.Fatalf("failed to marshal %v: %v", address, err)
		}
		var restored Address
		if err := restored.UnmarshalText(encoded); err != nil {
			t.Fatalf("failed to unmarshal %s: %v", encoded, err)
		}
		if restored != address {
			t.Errorf("round trip of %v produced %v", address, restored)
		}
	}
}

func TestAddress_UnmarshalRejectsWrongLength(t *testing.T) {
	var address Address
	if err := address.UnmarshalText([]byte("0x0102")); err == nil {
		t.Errorf("short input accepted")
	}
}
