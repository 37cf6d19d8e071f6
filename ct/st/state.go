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
	"fmt"
	"maps"
	"sort"
	"strings"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// AllowancePair identifies one allowance slot of the account state.
type AllowancePair struct {
	Owner   Address
	Spender Address
}

func (p AllowancePair) String() string {
	return fmt.Sprintf("(%v,%v)", p.Owner, p.Spender)
}

// MarshalText encodes the pair as "owner->spender", making AllowancePair
// usable as a JSON map key.
func (p AllowancePair) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%v->%v", p.Owner, p.Spender)), nil
}

func (p *AllowancePair) UnmarshalText(data []byte) error {
	owner, spender, found := strings.Cut(string(data), "->")
	if !found {
		return fmt.Errorf("invalid allowance key %q", data)
	}
	if err := p.Owner.UnmarshalText([]byte(owner)); err != nil {
		return err
	}
	return p.Spender.UnmarshalText([]byte(spender))
}

// State is an observable snapshot of a token's account state: the balance of
// every tracked account, the tracked allowance slots, and the total supply.
// Absent map entries read as zero; zero values are never stored, so two
// states describing the same accounts are structurally equal.
type State struct {
	Balances    map[Address]U256
	Allowances  map[AllowancePair]U256
	TotalSupply U256
}

// NewState creates an empty state: no balances, no allowances, zero supply.
func NewState() *State {
	return &State{
		Balances:   map[Address]U256{},
		Allowances: map[AllowancePair]U256{},
	}
}

func (s *State) Clone() *State {
	return &State{
		Balances:    maps.Clone(s.Balances),
		Allowances:  maps.Clone(s.Allowances),
		TotalSupply: s.TotalSupply,
	}
}

func (s *State) GetBalance(account Address) U256 {
	return s.Balances[account]
}

// SetBalance updates the tracked balance of an account. Zero balances are
// normalized to absent entries.
func (s *State) SetBalance(account Address, value U256) {
	if value.IsZero() {
		delete(s.Balances, account)
		return
	}
	s.Balances[account] = value
}

func (s *State) GetAllowance(owner, spender Address) U256 {
	return s.Allowances[AllowancePair{owner, spender}]
}

// SetAllowance updates a tracked allowance slot, normalizing zero to absent.
func (s *State) SetAllowance(owner, spender Address, value U256) {
	pair := AllowancePair{owner, spender}
	if value.IsZero() {
		delete(s.Allowances, pair)
		return
	}
	s.Allowances[pair] = value
}

// SumOfBalances adds up all tracked balances modulo 2^256. Supply
// conservation is checked against this wrapped sum, matching the modular
// supply bookkeeping of mint.
func (s *State) SumOfBalances() U256 {
	sum := NewU256(0)
	for _, balance := range s.Balances {
		sum = sum.Add(balance)
	}
	return sum
}

func (s *State) Eq(other *State) bool {
	return maps.Equal(s.Balances, other.Balances) &&
		maps.Equal(s.Allowances, other.Allowances) &&
		s.TotalSupply.Eq(other.TotalSupply)
}

// Diff lists human-readable differences between two states. An empty result
// means the states are equal.
func (s *State) Diff(other *State) []string {
	res := []string{}

	if !s.TotalSupply.Eq(other.TotalSupply) {
		res = append(res, fmt.Sprintf("Different total supply: %v vs %v", s.TotalSupply, other.TotalSupply))
	}

	for _, account := range sortedAccounts(s.Balances, other.Balances) {
		a, b := s.Balances[account], other.Balances[account]
		if a.Ne(b) {
			res = append(res, fmt.Sprintf("Different balance for %v: %v vs %v", account, a, b))
		}
	}

	for _, pair := range sortedPairs(s.Allowances, other.Allowances) {
		a, b := s.Allowances[pair], other.Allowances[pair]
		if a.Ne(b) {
			res = append(res, fmt.Sprintf("Different allowance for %v: %v vs %v", pair, a, b))
		}
	}

	return res
}

func (s *State) String() string {
	builder := strings.Builder{}
	builder.WriteString("{\n")
	builder.WriteString(fmt.Sprintf("\tTotalSupply: %v\n", s.TotalSupply))
	for _, account := range sortedAccounts(s.Balances) {
		builder.WriteString(fmt.Sprintf("\tBalance %v: %v\n", account, s.Balances[account]))
	}
	for _, pair := range sortedPairs(s.Allowances) {
		builder.WriteString(fmt.Sprintf("\tAllowance %v: %v\n", pair, s.Allowances[pair]))
	}
	builder.WriteString("}")
	return builder.String()
}

func sortedAccounts(balanceMaps ...map[Address]U256) []Address {
	seen := map[Address]bool{}
	res := []Address{}
	for _, balances := range balanceMaps {
		for account := range balances {
			if !seen[account] {
				seen[account] = true
				res = append(res, account)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}

func sortedPairs(allowanceMaps ...map[AllowancePair]U256) []AllowancePair {
	seen := map[AllowancePair]bool{}
	res := []AllowancePair{}
	for _, allowances := range allowanceMaps {
		for pair := range allowances {
			if !seen[pair] {
				seen[pair] = true
				res = append(res, pair)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}
