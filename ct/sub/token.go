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
	"fmt"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// ErrReverted is the outcome of a call aborted by the subject. A reverted
// call has no observable state effect.
const ErrReverted = ConstErr("execution reverted")

// Op identifies an operation of the token surface.
type Op int

const (
	Transfer Op = iota
	TransferFrom
	Approve
	Mint
	TotalSupply
	BalanceOf
	Allowance
	NumOps // not an actual operation
)

func (op Op) String() string {
	switch op {
	case Transfer:
		return "transfer"
	case TransferFrom:
		return "transferFrom"
	case Approve:
		return "approve"
	case Mint:
		return "mint"
	case TotalSupply:
		return "totalSupply"
	case BalanceOf:
		return "balanceOf"
	case Allowance:
		return "allowance"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// MarshalText encodes the operation by its solidity-style name in exported
// witnesses.
func (op Op) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

func (op *Op) UnmarshalText(data []byte) error {
	for candidate := Op(0); candidate < NumOps; candidate++ {
		if candidate.String() == string(data) {
			*op = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown operation %q", data)
}

// IsMutating reports whether the operation may change account state.
func (op Op) IsMutating() bool {
	switch op {
	case Transfer, TransferFrom, Approve, Mint:
		return true
	}
	return false
}

// Call is one concrete invocation of the subject. Which argument fields are
// meaningful depends on the operation; unused fields are ignored.
type Call struct {
	Op      Op
	Caller  Address // message sender
	From    Address // transferFrom source
	To      Address // transfer / transferFrom destination, mint receiver
	Owner   Address // allowance read
	Spender Address // approve / allowance spender
	Amount  U256
}

func (c Call) String() string {
	switch c.Op {
	case Transfer:
		return fmt.Sprintf("%v: transfer(%v, %v)", c.Caller, c.To, c.Amount)
	case TransferFrom:
		return fmt.Sprintf("%v: transferFrom(%v, %v, %v)", c.Caller, c.From, c.To, c.Amount)
	case Approve:
		return fmt.Sprintf("%v: approve(%v, %v)", c.Caller, c.Spender, c.Amount)
	case Mint:
		return fmt.Sprintf("mint(%v, %v)", c.To, c.Amount)
	case TotalSupply:
		return "totalSupply()"
	case BalanceOf:
		return fmt.Sprintf("balanceOf(%v)", c.Owner)
	case Allowance:
		return fmt.Sprintf("allowance(%v, %v)", c.Owner, c.Spender)
	default:
		return fmt.Sprintf("unknown call %d", c.Op)
	}
}

// Receipt is the observed outcome of a call: either the subject reverted, or
// the call completed with an optional boolean result (mutating operations)
// or an amount (read operations).
type Receipt struct {
	Reverted  bool
	HasResult bool
	Result    bool
	HasValue  bool
	Value     U256
}

// Completed reports whether the call finished without reverting.
func (r Receipt) Completed() bool {
	return !r.Reverted
}

// CompletedFalse reports the discouraged outcome of a mutating call that did
// not revert but returned false.
func (r Receipt) CompletedFalse() bool {
	return !r.Reverted && r.HasResult && !r.Result
}

func (r Receipt) String() string {
	if r.Reverted {
		return "reverted"
	}
	if r.HasResult {
		return fmt.Sprintf("completed(%t)", r.Result)
	}
	if r.HasValue {
		return fmt.Sprintf("completed(%v)", r.Value)
	}
	return "completed"
}

// Token is the typed interface every subject under test must expose. All
// mutating operations are atomic: they either apply all their effects and
// return a result, or revert with ErrReverted and change nothing. Reads are
// pure and always succeed.
//
// Mint is a test-harness privilege used to establish preconditions; it is
// not part of the standard's public surface.
type Token interface {
	Mint(to Address, amount U256) error
	Transfer(caller, to Address, amount U256) (bool, error)
	TransferFrom(caller, from, to Address, amount U256) (bool, error)
	Approve(caller, spender Address, amount U256) (bool, error)
	TotalSupply() U256
	BalanceOf(account Address) U256
	Allowance(owner, spender Address) U256
}

// RawCaller is the optional low-level entry point of a subject: ABI-encoded
// calldata in, ABI-encoded return data out, with reverts reported as
// ErrReverted. It exists so that the harness can distinguish a revert from a
// completed call returning false without the typed signatures getting in the
// way.
type RawCaller interface {
	CallRaw(caller Address, input []byte) ([]byte, error)
}
