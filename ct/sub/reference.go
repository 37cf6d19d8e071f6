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
	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/st"
)

// ReferenceToken is a compliant in-memory token model. It is the harness's
// own baseline subject: every property of the catalog must hold for it.
//
// Semantics:
//   - mutating calls naming the null address as a primary party revert
//   - insufficient balances and allowances revert
//   - a transfer that would push the receiver's balance beyond the maximum
//     representable amount reverts
//   - an allowance of MaxU256 acts as an unlimited sentinel and is not
//     consumed by transferFrom
//   - mint credits the receiver, reverting only if the receiver's individual
//     balance would overflow, and adds to the total supply modulo 2^256
type ReferenceToken struct {
	balances    map[Address]U256
	allowances  map[st.AllowancePair]U256
	totalSupply U256
}

func NewReferenceToken() Token {
	return WithRawDispatch(&ReferenceToken{
		balances:   map[Address]U256{},
		allowances: map[st.AllowancePair]U256{},
	})
}

func (t *ReferenceToken) Mint(to Address, amount U256) error {
	if to.IsNull() {
		return ErrReverted
	}
	balance, overflow := t.balances[to].AddOverflow(amount)
	if overflow {
		return ErrReverted
	}
	t.balances[to] = balance
	t.totalSupply = t.totalSupply.Add(amount)
	return nil
}

func (t *ReferenceToken) Transfer(caller, to Address, amount U256) (bool, error) {
	return t.move(caller, to, amount)
}

func (t *ReferenceToken) TransferFrom(caller, from, to Address, amount U256) (bool, error) {
	if caller.IsNull() {
		return false, ErrReverted
	}
	pair := st.AllowancePair{Owner: from, Spender: caller}
	allowance := t.allowances[pair]
	unlimited := allowance.Eq(MaxU256())
	if !unlimited && amount.Gt(allowance) {
		return false, ErrReverted
	}
	ok, err := t.move(from, to, amount)
	if err != nil {
		return ok, err
	}
	if !unlimited {
		remaining, _ := allowance.CheckedSub(amount)
		t.allowances[pair] = remaining
	}
	return true, nil
}

func (t *ReferenceToken) Approve(caller, spender Address, amount U256) (bool, error) {
	if caller.IsNull() || spender.IsNull() {
		return false, ErrReverted
	}
	t.allowances[st.AllowancePair{Owner: caller, Spender: spender}] = amount
	return true, nil
}

func (t *ReferenceToken) TotalSupply() U256 {
	return t.totalSupply
}

func (t *ReferenceToken) BalanceOf(account Address) U256 {
	return t.balances[account]
}

func (t *ReferenceToken) Allowance(owner, spender Address) U256 {
	return t.allowances[st.AllowancePair{Owner: owner, Spender: spender}]
}

// move applies the shared balance bookkeeping of transfer and transferFrom.
// All checks happen before any mutation so a revert leaves the maps intact.
func (t *ReferenceToken) move(from, to Address, amount U256) (bool, error) {
	if from.IsNull() || to.IsNull() {
		return false, ErrReverted
	}
	source, ok := t.balances[from].CheckedSub(amount)
	if !ok {
		return false, ErrReverted
	}
	destination := t.balances[to]
	if from == to {
		destination = source
	}
	destination, overflow := destination.AddOverflow(amount)
	if overflow {
		return false, ErrReverted
	}
	t.balances[from] = source
	t.balances[to] = destination
	return true, nil
}

