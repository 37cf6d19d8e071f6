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

// This file hosts deliberately defective token implementations. They are the
// harness's regression fixtures: the property catalog must produce a
// counterexample for each of them while passing the reference token. Each
// variant injects exactly one class of defect into otherwise compliant
// bookkeeping.

// NewUncheckedBalanceToken returns a token whose transfer path skips the
// sender balance check, so an excessive amount wraps the sender's balance
// around instead of reverting.
func NewUncheckedBalanceToken() Token {
	return WithRawDispatch(&uncheckedBalanceToken{newModel()})
}

// NewSilentFalseToken returns a token that reports every rejected mutating
// call as a completed call returning false, instead of reverting.
func NewSilentFalseToken() Token {
	return WithRawDispatch(&silentFalseToken{newModel()})
}

// NewStickyAllowanceToken returns a token whose transferFrom moves funds but
// never consumes the spender's allowance.
func NewStickyAllowanceToken() Token {
	return WithRawDispatch(&stickyAllowanceToken{newModel()})
}

// NewSkimmingToken returns a token that burns one unit of every non-zero
// transfer, so the receiver is credited less than the sender is debited.
func NewSkimmingToken() Token {
	return WithRawDispatch(&skimmingToken{newModel()})
}

// NewNullSinkToken returns a token that accepts the null address as a
// transfer destination and credits it like a regular account.
func NewNullSinkToken() Token {
	return WithRawDispatch(&nullSinkToken{newModel()})
}

// model is the shared compliant core the variants derive from.
type model struct {
	ReferenceToken
}

func newModel() model {
	return model{ReferenceToken{
		balances:   map[Address]U256{},
		allowances: map[st.AllowancePair]U256{},
	}}
}

////////////////////////////////////////////////////////////

type uncheckedBalanceToken struct {
	model
}

func (t *uncheckedBalanceToken) Transfer(caller, to Address, amount U256) (bool, error) {
	if caller.IsNull() || to.IsNull() {
		return false, ErrReverted
	}
	// The balance check is missing; the subtraction wraps.
	t.balances[caller] = t.balances[caller].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
	return true, nil
}

////////////////////////////////////////////////////////////

type silentFalseToken struct {
	model
}

func (t *silentFalseToken) Transfer(caller, to Address, amount U256) (bool, error) {
	ok, err := t.model.Transfer(caller, to, amount)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func (t *silentFalseToken) TransferFrom(caller, from, to Address, amount U256) (bool, error) {
	ok, err := t.model.TransferFrom(caller, from, to, amount)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func (t *silentFalseToken) Approve(caller, spender Address, amount U256) (bool, error) {
	ok, err := t.model.Approve(caller, spender, amount)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

////////////////////////////////////////////////////////////

type stickyAllowanceToken struct {
	model
}

func (t *stickyAllowanceToken) TransferFrom(caller, from, to Address, amount U256) (bool, error) {
	if caller.IsNull() {
		return false, ErrReverted
	}
	if amount.Gt(t.Allowance(from, caller)) {
		return false, ErrReverted
	}
	// Funds move, but the allowance is left untouched.
	return t.move(from, to, amount)
}

////////////////////////////////////////////////////////////

type skimmingToken struct {
	model
}

func (t *skimmingToken) Transfer(caller, to Address, amount U256) (bool, error) {
	if caller.IsNull() || to.IsNull() {
		return false, ErrReverted
	}
	source, ok := t.balances[caller].CheckedSub(amount)
	if !ok {
		return false, ErrReverted
	}
	delivered, _ := amount.CheckedSub(NewU256(1))
	if amount.IsZero() {
		delivered = amount
	}
	destination := t.balances[to]
	if caller == to {
		destination = source
	}
	destination, overflow := destination.AddOverflow(delivered)
	if overflow {
		return false, ErrReverted
	}
	t.balances[caller] = source
	t.balances[to] = destination
	return true, nil
}

////////////////////////////////////////////////////////////

type nullSinkToken struct {
	model
}

func (t *nullSinkToken) Transfer(caller, to Address, amount U256) (bool, error) {
	if caller.IsNull() {
		return false, ErrReverted
	}
	source, ok := t.balances[caller].CheckedSub(amount)
	if !ok {
		return false, ErrReverted
	}
	destination := t.balances[to]
	if caller == to {
		destination = source
	}
	destination, overflow := destination.AddOverflow(amount)
	if overflow {
		return false, ErrReverted
	}
	t.balances[caller] = source
	t.balances[to] = destination
	return true, nil
}
