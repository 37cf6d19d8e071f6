// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package st

import (
	"strings"
	"testing"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

func TestState_AbsentEntriesReadAsZero(t *testing.T) {
	state := NewState()
	account := NewAddressFromInt(1)
	if !state.GetBalance(account).IsZero() {
		t.Errorf("absent balance is not zero")
	}
	if !state.GetAllowance(account, NewAddressFromInt(2)).IsZero() {
		t.Errorf("absent allowance is not zero")
	}
}

func TestState_ZeroValuesAreNormalizedToAbsent(t *testing.T) {
	state := NewState()
	account := NewAddressFromInt(1)
	spender := NewAddressFromInt(2)

	state.SetBalance(account, NewU256(10))
	state.SetBalance(account, NewU256(0))
	if len(state.Balances) != 0 {
		t.Errorf("zero balance retained as entry")
	}

	state.SetAllowance(account, spender, NewU256(10))
	state.SetAllowance(account, spender, NewU256(0))
	if len(state.Allowances) != 0 {
		t.Errorf("zero allowance retained as entry")
	}
}

func TestState_StructurallyEqualStatesAreEqual(t *testing.T) {
	a := NewState()
	a.SetBalance(NewAddressFromInt(1), NewU256(10))
	a.SetAllowance(NewAddressFromInt(1), NewAddressFromInt(2), NewU256(5))
	a.TotalSupply = NewU256(10)

	b := NewState()
	b.SetBalance(NewAddressFromInt(1), NewU256(10))
	b.SetBalance(NewAddressFromInt(2), NewU256(0)) // < normalized away
	b.SetAllowance(NewAddressFromInt(1), NewAddressFromInt(2), NewU256(5))
	b.TotalSupply = NewU256(10)

	if !a.Eq(b) {
		t.Errorf("states differ: %v", a.Diff(b))
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	state := NewState()
	state.SetBalance(NewAddressFromInt(1), NewU256(10))
	clone := state.Clone()
	clone.SetBalance(NewAddressFromInt(1), NewU256(20))
	if got := state.GetBalance(NewAddressFromInt(1)); got.Ne(NewU256(10)) {
		t.Errorf("clone modification leaked into the original, balance is %v", got)
	}
}

func TestState_DiffNamesEveryDifference(t *testing.T) {
	a := NewState()
	a.SetBalance(NewAddressFromInt(1), NewU256(10))
	a.TotalSupply = NewU256(10)

	b := NewState()
	b.SetBalance(NewAddressFromInt(1), NewU256(20))
	b.SetAllowance(NewAddressFromInt(1), NewAddressFromInt(2), NewU256(5))
	b.TotalSupply = NewU256(20)

	diff := a.Diff(b)
	if len(diff) != 3 {
		t.Errorf("expected 3 differences, got %d: %v", len(diff), diff)
	}
	report := strings.Join(diff, "\n")
	for _, needle := range []string{"balance", "allowance", "supply"} {
		if !strings.Contains(report, needle) {
			t.Errorf("difference report misses %q:\n%s", needle, report)
		}
	}
}

func TestState_SumOfBalancesWraps(t *testing.T) {
	state := NewState()
	state.SetBalance(NewAddressFromInt(1), MaxU256())
	state.SetBalance(NewAddressFromInt(2), NewU256(3))
	if got := state.SumOfBalances(); got.Ne(NewU256(2)) {
		t.Errorf("wrapping sum is %v, want 2", got)
	}
}

func TestAllowancePair_TextMarshalingRoundTrips(t *testing.T) {
	pair := AllowancePair{Owner: NewAddressFromInt(1), Spender: NewAddressFromInt(2)}
	encoded, err := pair.MarshalText()
	if err != nil {
		t.Fatalf("failed to marshal %v: %v", pair, err)
	}
	var restored AllowancePair
	if err := restored.UnmarshalText(encoded); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", encoded, err)
	}
	if restored != pair {
		t.Errorf("round trip of %v produced %v", pair, restored)
	}
}
