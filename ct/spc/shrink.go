// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package spc

import (
	"slices"

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	"github.com/Fantom-foundation/Tick/ct/rlz"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

// Shrinking reduces a failing scenario before it is reported: amounts are
// pushed towards zero and addresses are renamed to small canonical values,
// as long as the reduced scenario still violates the postcondition. Since
// the full assignment of a scenario is pinned during re-generation, every
// shrinking step replays deterministically.

const maxShrinkRounds = 8

func shrinkCounterexample(property *rlz.Property, factory func() sub.Token, ctx *rlz.Context, issue error, seed uint64) *Witness {
	best := witnessOf(property, ctx, issue)
	assignment := ctx.Assignment.Clone()

	amounts := shrinkableAmounts(property)
	for round := 0; round < maxShrinkRounds; round++ {
		improved := false
		for _, v := range amounts {
			current, bound := assignment[v]
			if !bound {
				continue
			}
			for _, candidate := range amountCandidates(current) {
				trial := assignment.Clone()
				trial[v] = candidate
				if witness, ok := reproduces(property, factory, trial, seed); ok {
					assignment = trial
					best = witness
					improved = true
					break
				}
			}
		}
		if !improved {
			break
		}
	}

	if trial, changed := canonicalAddresses(property, assignment); changed {
		if witness, ok := reproduces(property, factory, trial, seed); ok {
			best = witness
		}
	}
	return best
}

func witnessOf(property *rlz.Property, ctx *rlz.Context, issue error) *Witness {
	return &Witness{
		Property:   property.Id,
		Assignment: ctx.Assignment.Clone(),
		Pre:        ctx.Pre,
		Call:       ctx.Call,
		Receipt:    ctx.Receipt,
		Post:       ctx.Post,
		Reason:     issue.Error(),
	}
}

// reproduces replays the property with a fully pinned assignment and reports
// whether the postcondition still fails. Scenarios that became unsatisfiable
// by the modification are simply not reproductions.
func reproduces(property *rlz.Property, factory func() sub.Token, assignment gen.Assignment, seed uint64) (*Witness, bool) {
	rnd := rand.New(seed)
	ctx, err := runScenario(property, factory, assignment.Clone(), rnd)
	if err != nil {
		return nil, false
	}
	issue := property.Check(ctx)
	if issue == nil {
		return nil, false
	}
	return witnessOf(property, ctx, issue), true
}

// shrinkableAmounts lists the amount variables of a property, precondition
// variables first, the call argument last.
func shrinkableAmounts(property *rlz.Property) []gen.Variable {
	generator := gen.NewStateGenerator()
	property.Condition.Restrict(generator)
	amounts := generator.AmountVariables()
	if v := property.Call.AmountVariable(); v != "" && !slices.Contains(amounts, v) {
		amounts = append(amounts, v)
	}
	return amounts
}

// amountCandidates proposes strictly smaller replacement values, most
// aggressive first.
func amountCandidates(value U256) []U256 {
	if value.IsZero() {
		return nil
	}
	candidates := []U256{NewU256(0)}
	for _, candidate := range []U256{
		NewU256(1),
		value.Div(NewU256(2)),
		value.Sub(NewU256(1)),
	} {
		if candidate.Lt(value) && !slices.Contains(candidates, candidate) {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// canonicalAddresses renames the distinct addresses of a scenario to 1, 2, 3,
// ... in variable order, keeping the null address and all aliasing intact.
func canonicalAddresses(property *rlz.Property, assignment gen.Assignment) (gen.Assignment, bool) {
	generator := gen.NewStateGenerator()
	property.Condition.Restrict(generator)
	variables := generator.AddressVariables()
	for _, v := range property.Call.AddressVariables() {
		if !slices.Contains(variables, v) {
			variables = append(variables, v)
		}
	}

	renaming := map[Address]Address{NullAddress: NullAddress}
	next := uint64(1)
	trial := assignment.Clone()
	changed := false
	for _, v := range variables {
		if _, bound := assignment[v]; !bound {
			continue
		}
		address := assignment.Address(v)
		replacement, seen := renaming[address]
		if !seen {
			replacement = NewAddressFromInt(next)
			next++
			renaming[address] = replacement
		}
		if replacement != address {
			trial[v] = replacement.ToU256()
			changed = true
		}
	}
	return trial, changed
}
