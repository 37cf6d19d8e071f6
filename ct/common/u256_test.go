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
	"bytes"
	"testing"

	"pgregory.net/rand"
)

func TestNewU256_ArgumentsAreMostSignificantFirst(t *testing.T) {
	x := NewU256(1, 2)
	want := [32]byte{}
	want[23] = 1
	want[31] = 2
	if got := x.Bytes32be(); !bytes.Equal(got[:], want[:]) {
		t.Errorf("unexpected encoding, got %x, want %x", got, want)
	}
}

func TestNewU256_PanicsWithTooManyArguments(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fail()
		}
	}()
	_ = NewU256(1, 2, 3, 4, 5)
}

func TestU256_AddOverflowReportsWrapAround(t *testing.T) {
	tests := map[string]struct {
		a, b     U256
		want     U256
		overflow bool
	}{
		"no overflow":      {NewU256(1), NewU256(2), NewU256(3), false},
		"max plus zero":    {MaxU256(), NewU256(0), MaxU256(), false},
		"max plus one":     {MaxU256(), NewU256(1), NewU256(0), true},
		"half plus half":   {MaxU256().Div(NewU256(2)), MaxU256().Div(NewU256(2)), MaxU256().Sub(NewU256(1)), false},
		"max plus max":     {MaxU256(), MaxU256(), MaxU256().Sub(NewU256(1)), true},
		"one over the top": {MaxU256().Sub(NewU256(5)), NewU256(7), NewU256(1), true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, overflow := test.a.AddOverflow(test.b)
			if got.Ne(test.want) || overflow != test.overflow {
				t.Errorf("got (%v,%t), want (%v,%t)", got, overflow, test.want, test.overflow)
			}
		})
	}
}

func TestU256_CheckedSubReportsUnderflow(t *testing.T) {
	if _, ok := NewU256(1).CheckedSub(NewU256(2)); ok {
		t.Errorf("underflow not reported")
	}
	if diff, ok := NewU256(5).CheckedSub(NewU256(2)); !ok || diff.Ne(NewU256(3)) {
		t.Errorf("got (%v,%t), want (3,true)", diff, ok)
	}
	if diff, ok := NewU256(5).CheckedSub(NewU256(5)); !ok || !diff.IsZero() {
		t.Errorf("got (%v,%t), want (0,true)", diff, ok)
	}
}

func TestU256_ComparisonOperators(t *testing.T) {
	small := NewU256(1)
	big := NewU256(1, 0) // 2^64
	if !small.Lt(big) || !small.Le(big) || small.Gt(big) || small.Ge(big) {
		t.Errorf("ordering of %v and %v broken", small, big)
	}
	if !small.Eq(small) || small.Ne(small) {
		t.Errorf("equality of %v broken", small)
	}
}

func TestRandU256Below_StaysBelowBound(t *testing.T) {
	rnd := rand.New(0)
	bounds := []U256{
		NewU256(1),
		NewU256(17),
		NewU256(1, 0),
		MaxU256(),
	}
	for _, bound := range bounds {
		for i := 0; i < 100; i++ {
			if value := RandU256Below(rnd, bound); !value.Lt(bound) {
				t.Fatalf("generated %v, expected a value below %v", value, bound)
			}
		}
	}
}

func TestU256_BigConversionRoundTrips(t *testing.T) {
	values := []U256{
		NewU256(0),
		NewU256(42),
		NewU256(1, 2, 3, 4),
		MaxU256(),
	}
	for _, value := range values {
		if restored := U256FromBig(value.ToBig()); restored.Ne(value) {
			t.Errorf("round trip of %v produced %v", value, restored)
		}
	}
}

func TestU256_TextMarshalingRoundTrips(t *testing.T) {
	values := []U256{
		NewU256(0),
		NewU256(42),
		MaxU256(),
	}
	for _, value := range values {
		encoded, err := value.MarshalText()
		if err != nil {
			t.Fatalf("failed to marshal %v: %v", value, err)
		}
		var restored U256
		if err := restored.UnmarshalText(encoded); err != nil {
			t.Fatalf("failed to unmarshal %s: %v", encoded, err)
		}
		if restored.Ne(value) {
			t.Errorf("round trip of %v produced %v", value, restored)
		}
	}
}
