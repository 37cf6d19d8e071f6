// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package rlz

import (
	"fmt"

	"pgregory.net/rand"

	"github.com/Fantom-foundation/Tick/ct/gen"
	"github.com/Fantom-foundation/Tick/ct/st"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

// CallSpec describes the call under test of a property: the operation, the
// calling convention, and the variables providing the concrete arguments.
// Only the argument fields used by the operation are consulted.
type CallSpec struct {
	Op      sub.Op
	Mode    sub.CallMode
	Caller  gen.Variable
	From    gen.Variable
	To      gen.Variable
	Owner   gen.Variable
	Spender gen.Variable
	Amount  gen.Variable
}

// AddressVariables lists the address variables this call specification
// consumes.
func (s *CallSpec) AddressVariables() []gen.Variable {
	res := []gen.Variable{}
	for _, v := range []gen.Variable{s.Caller, s.From, s.To, s.Owner, s.Spender} {
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}

// AmountVariable names the amount variable of the call, or "" if the
// operation takes none.
func (s *CallSpec) AmountVariable() gen.Variable {
	return s.Amount
}

// Materialize resolves the call specification against a variable assignment.
// All variables the operation needs must be bound.
func (s *CallSpec) Materialize(assignment gen.Assignment) (sub.Call, error) {
	call := sub.Call{Op: s.Op}
	bindAddress := func(v gen.Variable, field *[20]byte) error {
		if v == "" {
			return nil
		}
		if _, found := assignment[v]; !found {
			return fmt.Errorf("%w: %v", gen.ErrUnboundVariable, v)
		}
		*field = assignment.Address(v)
		return nil
	}
	if err := bindAddress(s.Caller, (*[20]byte)(&call.Caller)); err != nil {
		return sub.Call{}, err
	}
	if err := bindAddress(s.From, (*[20]byte)(&call.From)); err != nil {
		return sub.Call{}, err
	}
	if err := bindAddress(s.To, (*[20]byte)(&call.To)); err != nil {
		return sub.Call{}, err
	}
	if err := bindAddress(s.Owner, (*[20]byte)(&call.Owner)); err != nil {
		return sub.Call{}, err
	}
	if err := bindAddress(s.Spender, (*[20]byte)(&call.Spender)); err != nil {
		return sub.Call{}, err
	}
	if s.Amount != "" {
		amount, found := assignment[s.Amount]
		if !found {
			return sub.Call{}, fmt.Errorf("%w: %v", gen.ErrUnboundVariable, s.Amount)
		}
		call.Amount = amount
	}
	return call, nil
}

// Context carries everything a postcondition may inspect: the pre- and
// post-state snapshots, the materialized call, its receipt, and the variable
// assignment of the scenario.
type Context struct {
	Pre        *st.State
	Post       *st.State
	Call       sub.Call
	Receipt    sub.Receipt
	Assignment gen.Assignment
}

// Property is one named invariant of the catalog: a precondition over
// generated scenarios, the call under test, and a postcondition over the
// observed outcome. A postcondition returning an error is a counterexample.
type Property struct {
	Id        string
	Name      string
	Condition Condition
	Call      CallSpec
	Check     func(ctx *Context) error
}

func (p *Property) String() string {
	return fmt.Sprintf("%s (%s): %v", p.Id, p.Name, p.Condition)
}

// GenerateScenario produces a pre-state and assignment satisfying this
// property's precondition. Variables already bound in the given assignment
// are kept, which is what counterexample shrinking relies on.
func (p *Property) GenerateScenario(assignment gen.Assignment, rnd *rand.Rand) (*st.State, error) {
	generator := gen.NewStateGenerator()
	p.Condition.Restrict(generator)
	return generator.Generate(assignment, rnd)
}
