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
	"errors"
	"fmt"
	"sort"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/st"
)

// CallMode selects the calling convention used for the call under test.
//
// A typed call treats a revert as "never happened": the caller gets an error
// and no result. A raw call goes through the subject's low-level dispatch and
// captures both whether the call reverted and, if not, the decoded return
// payload, so that "reverted" and "completed but returned false" remain
// distinguishable outcomes.
type CallMode int

const (
	TypedCall CallMode = iota
	RawCall
)

func (m CallMode) String() string {
	switch m {
	case TypedCall:
		return "typed"
	case RawCall:
		return "raw"
	default:
		return fmt.Sprintf("CallMode(%d)", m)
	}
}

// Subject wraps a token under test with the harness's two calling
// conventions and snapshot support. It never masks a revert as a false
// return or vice versa; it merely records which of the two the subject
// produced.
type Subject struct {
	token Token
}

func NewSubject(token Token) *Subject {
	return &Subject{token: token}
}

// Run issues a single call in the requested mode. The returned error reports
// harness-level problems only (undecodable return data, unsupported
// operations); the subject's own revert / result outcome is part of the
// Receipt.
func (s *Subject) Run(mode CallMode, call Call) (Receipt, error) {
	if mode == RawCall {
		if raw, ok := s.token.(RawCaller); ok {
			return s.runRaw(raw, call)
		}
		// Subjects without a low-level entry point are driven through the
		// typed interface; the revert / false-return distinction is preserved
		// since typed methods report both channels separately.
	}
	return s.runTyped(call)
}

func (s *Subject) runRaw(raw RawCaller, call Call) (Receipt, error) {
	input, err := EncodeCall(call)
	if err != nil {
		return Receipt{}, err
	}
	ret, err := raw.CallRaw(call.Caller, input)
	if errors.Is(err, ErrReverted) {
		return Receipt{Reverted: true}, nil
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("raw dispatch of %v failed: %w", call, err)
	}
	return DecodeReceipt(call.Op, ret)
}

func (s *Subject) runTyped(call Call) (Receipt, error) {
	var result bool
	var err error
	switch call.Op {
	case Transfer:
		result, err = s.token.Transfer(call.Caller, call.To, call.Amount)
	case TransferFrom:
		result, err = s.token.TransferFrom(call.Caller, call.From, call.To, call.Amount)
	case Approve:
		result, err = s.token.Approve(call.Caller, call.Spender, call.Amount)
	case Mint:
		err = s.token.Mint(call.To, call.Amount)
		if errors.Is(err, ErrReverted) {
			return Receipt{Reverted: true}, nil
		}
		return Receipt{}, err
	case TotalSupply:
		return Receipt{HasValue: true, Value: s.token.TotalSupply()}, nil
	case BalanceOf:
		return Receipt{HasValue: true, Value: s.token.BalanceOf(call.Owner)}, nil
	case Allowance:
		return Receipt{HasValue: true, Value: s.token.Allowance(call.Owner, call.Spender)}, nil
	default:
		return Receipt{}, fmt.Errorf("unsupported operation %v", call.Op)
	}
	if errors.Is(err, ErrReverted) {
		return Receipt{Reverted: true}, nil
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("typed dispatch of %v failed: %w", call, err)
	}
	return Receipt{HasResult: true, Result: result}, nil
}

// Snapshot reads the subject's observable state over the given account
// universe: the balance of every account, the allowance of every ordered
// account pair, and the total supply. Reads are issued through the typed
// interface and must not change any state.
func (s *Subject) Snapshot(universe []Address) *st.State {
	state := st.NewState()
	state.TotalSupply = s.token.TotalSupply()
	for _, account := range universe {
		state.SetBalance(account, s.token.BalanceOf(account))
	}
	for _, owner := range universe {
		for _, spender := range universe {
			state.SetAllowance(owner, spender, s.token.Allowance(owner, spender))
		}
	}
	return state
}

// Establish drives a fresh subject into the given target state using mint
// and approve setup calls. Balances are minted in a deterministic order;
// allowances are set by their owners. A failing setup call is a harness
// error, not a property verdict.
func (s *Subject) Establish(target *st.State) error {
	accounts := make([]Address, 0, len(target.Balances))
	for account := range target.Balances {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].String() < accounts[j].String()
	})
	for _, account := range accounts {
		if err := s.token.Mint(account, target.Balances[account]); err != nil {
			return fmt.Errorf("setup mint(%v, %v) failed: %w", account, target.Balances[account], err)
		}
	}

	pairs := make([]st.AllowancePair, 0, len(target.Allowances))
	for pair := range target.Allowances {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	for _, pair := range pairs {
		ok, err := s.token.Approve(pair.Owner, pair.Spender, target.Allowances[pair])
		if err != nil {
			return fmt.Errorf("setup approve(%v, %v) failed: %w", pair, target.Allowances[pair], err)
		}
		if !ok {
			return fmt.Errorf("setup approve(%v, %v) returned false", pair, target.Allowances[pair])
		}
	}
	return nil
}
