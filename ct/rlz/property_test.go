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
	"errors"
	"slices"
	"testing"

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

func TestCallSpec_MaterializeBindsAllArguments(t *testing.T) {
	spec := CallSpec{
		Op:     sub.TransferFrom,
		Caller: gen.Variable("caller"),
		From:   gen.Variable("from"),
		To:     gen.Variable("to"),
		Amount: gen.Variable("amount"),
	}
	assignment := gen.Assignment{
		gen.Variable("caller"): NewAddressFromInt(1).ToU256(),
		gen.Variable("from"):   NewAddressFromInt(2).ToU256(),
		gen.Variable("to"):     NewAddressFromInt(3).ToU256(),
		gen.Variable("amount"): NewU256(42),
	}
	call, err := spec.Materialize(assignment)
	if err != nil {
		t.Fatalf("failed to materialize call: %v", err)
	}
	if call.Op != sub.TransferFrom ||
		call.Caller != NewAddressFromInt(1) ||
		call.From != NewAddressFromInt(2) ||
		call.To != NewAddressFromInt(3) ||
		call.Amount.Ne(NewU256(42)) {
		t.Errorf("unexpected call %v", call)
	}
}

func TestCallSpec_MaterializeReportsUnboundVariables(t *testing.T) {
	spec := CallSpec{
		Op:     sub.Transfer,
		Caller: gen.Variable("caller"),
		To:     gen.Variable("to"),
		Amount: gen.Variable("amount"),
	}
	assignment := gen.Assignment{
		gen.Variable("caller"): NewAddressFromInt(1).ToU256(),
	}
	if _, err := spec.Materialize(assignment); !errors.Is(err, gen.ErrUnboundVariable) {
		t.Errorf("expected ErrUnboundVariable, got %v", err)
	}
}

func TestCallSpec_VariableEnumerationSkipsUnusedFields(t *testing.T) {
	spec := CallSpec{
		Op:      sub.Approve,
		Caller:  gen.Variable("caller"),
		Spender: gen.Variable("spender"),
		Amount:  gen.Variable("amount"),
	}
	addresses := spec.AddressVariables()
	if len(addresses) != 2 ||
		!slices.Contains(addresses, gen.Variable("caller")) ||
		!slices.Contains(addresses, gen.Variable("spender")) {
		t.Errorf("unexpected address variables %v", addresses)
	}
	if spec.AmountVariable() != gen.Variable("amount") {
		t.Errorf("unexpected amount variable %v", spec.AmountVariable())
	}
}

func TestProperty_GenerateScenarioSatisfiesCondition(t *testing.T) {
	sender := gen.Variable("sender")
	balance := gen.Variable("balance")
	amount := gen.Variable("amount")

	property := &Property{
		Id:   "TEST-01",
		Name: "scenarioGeneration",
		Condition: And(
			IsNotNull(sender),
			BalanceIs(sender, balance),
			ValueLe(amount, balance),
		),
		Call: CallSpec{Op: sub.Transfer, Caller: sender, To: sender, Amount: amount},
	}

	rnd := rand.New(0)
	for i := 0; i < 10; i++ {
		assignment := gen.Assignment{}
		state, err := property.GenerateScenario(assignment, rnd)
		if err != nil {
			t.Fatalf("failed to generate scenario: %v", err)
		}
		satisfied, err := property.Condition.Check(state, assignment)
		if err != nil {
			t.Fatalf("failed to check condition: %v", err)
		}
		if !satisfied {
			t.Fatalf("scenario does not satisfy %v", property.Condition)
		}
	}
}

func TestProperty_GenerateScenarioKeepsPreBoundVariables(t *testing.T) {
	sender := gen.Variable("sender")
	balance := gen.Variable("balance")

	property := &Property{
		Id:        "TEST-02",
		Name:      "pinnedGeneration",
		Condition: And(IsNotNull(sender), BalanceIs(sender, balance)),
		Call:      CallSpec{Op: sub.BalanceOf, Owner: sender},
	}

	rnd := rand.New(0)
	assignment := gen.Assignment{
		sender:  NewAddressFromInt(7).ToU256(),
		balance: NewU256(123),
	}
	state, err := property.GenerateScenario(assignment, rnd)
	if err != nil {
		t.Fatalf("failed to generate scenario: %v", err)
	}
	if got := state.GetBalance(NewAddressFromInt(7)); got.Ne(NewU256(123)) {
		t.Errorf("pinned balance is %v, want 123", got)
	}
}
