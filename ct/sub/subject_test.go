// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sub

import (
	"testing"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/st"
)

func TestSubject_EstablishReproducesTargetState(t *testing.T) {
	target := st.NewState()
	target.SetBalance(accountA, NewU256(100))
	target.SetBalance(accountB, NewU256(50))
	target.SetAllowance(accountA, accountB, NewU256(30))
	target.TotalSupply = NewU256(150)

	subject := NewSubject(NewReferenceToken())
	if err := subject.Establish(target); err != nil {
		t.Fatalf("failed to establish state: %v", err)
	}

	snapshot := subject.Snapshot([]Address{accountA, accountB, NullAddress})
	if !snapshot.Eq(target) {
		t.Errorf("established state differs: %v", snapshot.Diff(target))
	}
}

func TestSubject_TypedCallReportsRevertInReceipt(t *testing.T) {
	subject := NewSubject(NewReferenceToken())
	receipt, err := subject.Run(TypedCall, Call{Op: Transfer, Caller: accountA, To: NullAddress, Amount: NewU256(1)})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !receipt.Reverted {
		t.Errorf("revert not reported, receipt is %v", receipt)
	}
}

func TestSubject_RawCallDecodesBooleanResult(t *testing.T) {
	target := st.NewState()
	target.SetBalance(accountA, NewU256(100))

	subject := NewSubject(NewReferenceToken())
	if err := subject.Establish(target); err != nil {
		t.Fatalf("failed to establish state: %v", err)
	}

	receipt, err := subject.Run(RawCall, Call{Op: Transfer, Caller: accountA, To: accountB, Amount: NewU256(10)})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if receipt.Reverted || !receipt.HasResult || !receipt.Result {
		t.Errorf("unexpected receipt %v, want a true result", receipt)
	}
}

func TestSubject_RawCallDecodesAmounts(t *testing.T) {
	target := st.NewState()
	target.SetBalance(accountA, NewU256(100))
	target.SetAllowance(accountA, accountB, NewU256(30))

	subject := NewSubject(NewReferenceToken())
	if err := subject.Establish(target); err != nil {
		t.Fatalf("failed to establish state: %v", err)
	}

	tests := map[string]struct {
		call Call
		want U256
	}{
		"totalSupply": {Call{Op: TotalSupply, Caller: accountC}, NewU256(100)},
		"balanceOf":   {Call{Op: BalanceOf, Caller: accountC, Owner: accountA}, NewU256(100)},
		"allowance":   {Call{Op: Allowance, Caller: accountC, Owner: accountA, Spender: accountB}, NewU256(30)},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			receipt, err := subject.Run(RawCall, test.call)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if !receipt.HasValue || receipt.Value.Ne(test.want) {
				t.Errorf("unexpected receipt %v, want value %v", receipt, test.want)
			}
		})
	}
}

func TestSubject_RawCallReportsRevertInReceipt(t *testing.T) {
	subject := NewSubject(NewReferenceToken())
	receipt, err := subject.Run(RawCall, Call{Op: Transfer, Caller: NullAddress, To: accountB, Amount: NewU256(0)})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !receipt.Reverted {
		t.Errorf("revert not reported, receipt is %v", receipt)
	}
	if receipt.HasResult || receipt.HasValue {
		t.Errorf("reverted receipt carries a payload: %v", receipt)
	}
}

func TestSubject_RawDispatchUsesVariantOverrides(t *testing.T) {
	// The silent-false variant reports rejections as completed calls
	// returning false; the raw path must surface exactly that.
	subject := NewSubject(NewSilentFalseToken())
	receipt, err := subject.Run(RawCall, Call{Op: Transfer, Caller: accountA, To: accountB, Amount: NewU256(1)})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !receipt.CompletedFalse() {
		t.Errorf("expected a completed call returning false, got %v", receipt)
	}
}

func TestEncodeCall_RoundTripsThroughRawDispatch(t *testing.T) {
	token := NewReferenceToken()
	if err := token.Mint(accountA, NewU256(100)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	raw, ok := token.(RawCaller)
	if !ok {
		t.Fatalf("reference token lacks a raw entry point")
	}

	input, err := EncodeCall(Call{Op: BalanceOf, Owner: accountA})
	if err != nil {
		t.Fatalf("failed to encode call: %v", err)
	}
	ret, err := raw.CallRaw(accountC, input)
	if err != nil {
		t.Fatalf("raw call failed: %v", err)
	}
	receipt, err := DecodeReceipt(BalanceOf, ret)
	if err != nil {
		t.Fatalf("failed to decode return data: %v", err)
	}
	if !receipt.HasValue || receipt.Value.Ne(NewU256(100)) {
		t.Errorf("unexpected receipt %v, want value 100", receipt)
	}
}

func TestRawDispatch_RejectsUnknownSelector(t *testing.T) {
	token := NewReferenceToken()
	raw := token.(RawCaller)
	if _, err := raw.CallRaw(accountA, []byte{0xde, 0xad, 0xbe, 0xef}); err == nil {
		t.Errorf("unknown selector accepted")
	}
}
