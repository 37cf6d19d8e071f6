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
	"errors"
	"fmt"
	"sort"
	"time"

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	"github.com/Fantom-foundation/Tick/ct/rlz"
	"github.com/Fantom-foundation/Tick/ct/st"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

// Verdict is the outcome of evaluating one property against one subject.
type Verdict int

const (
	// Pass means every executed sample satisfied the postcondition.
	Pass Verdict = iota
	// Fail means a counterexample was found; the result carries a witness.
	Fail
	// Inconclusive means no counterexample was found, but the search does not
	// support a pass: either not a single satisfying scenario could be
	// generated, or the time budget ran out before all requested samples were
	// executed.
	Inconclusive
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Inconclusive:
		return "INCONCLUSIVE"
	default:
		return fmt.Sprintf("Verdict(%d)", v)
	}
}

// Witness is a concrete counterexample: the scenario, the call, its outcome,
// and the postcondition's complaint. Witnesses reported to users are shrunk
// first.
type Witness struct {
	Property   string
	Assignment gen.Assignment
	Pre        *st.State
	Call       sub.Call
	Receipt    sub.Receipt
	Post       *st.State
	Reason     string
}

func (w *Witness) String() string {
	return fmt.Sprintf(
		"property: %s\nassignment: %v\npre state: %v\ncall: %v\nreceipt: %v\npost state: %v\nreason: %s",
		w.Property, w.Assignment, w.Pre, w.Call, w.Receipt, w.Post, w.Reason,
	)
}

// Budget limits the effort spent on a single property. A zero Deadline means
// no time limit.
type Budget struct {
	Samples  int
	Deadline time.Time
}

func (b Budget) exceeded(now time.Time) bool {
	return !b.Deadline.IsZero() && now.After(b.Deadline)
}

// Result summarizes the evaluation of one property.
type Result struct {
	Property      *rlz.Property
	Verdict       Verdict
	Samples       int  // executed scenarios
	Unsatisfiable int  // generation attempts discarded as unsatisfiable
	TimedOut      bool // the deadline cut the sample loop short
	Witness       *Witness
}

// ErrSetupMismatch indicates that a subject, after being driven into a
// generated target state, does not actually exhibit that state. The affected
// sample is discarded since no property verdict can be derived from it.
const ErrSetupMismatch = ConstErr("subject state does not match established scenario")

// EvaluateProperty samples scenarios for the given property and checks its
// postcondition on a fresh subject per sample. The factory must produce an
// independent token instance on every call. Evaluation is deterministic for a
// fixed seed and factory.
func EvaluateProperty(property *rlz.Property, factory func() sub.Token, budget Budget, seed uint64) (Result, error) {
	res := Result{Property: property}
	rnd := rand.New(seed)
	for i := 0; i < budget.Samples; i++ {
		if budget.exceeded(time.Now()) {
			res.TimedOut = true
			break
		}
		assignment := gen.Assignment{}
		ctx, err := runScenario(property, factory, assignment, rnd)
		if errors.Is(err, gen.ErrUnsatisfiable) || errors.Is(err, ErrSetupMismatch) {
			res.Unsatisfiable++
			continue
		}
		if err != nil {
			return res, err
		}
		res.Samples++
		if issue := property.Check(ctx); issue != nil {
			witness := shrinkCounterexample(property, factory, ctx, issue, seed)
			res.Verdict = Fail
			res.Witness = witness
			return res, nil
		}
	}
	// An interrupted search must not count as a pass, no matter how many
	// samples ran clean before the deadline.
	if res.Samples == 0 || res.TimedOut {
		res.Verdict = Inconclusive
	}
	return res, nil
}

// runScenario generates a scenario honoring pre-bound variables, establishes
// it on a fresh subject, runs the property's call, and snapshots the state
// around it. Counterexample shrinking reuses this with partially pinned
// assignments.
func runScenario(property *rlz.Property, factory func() sub.Token, assignment gen.Assignment, rnd *rand.Rand) (*rlz.Context, error) {
	target, err := property.GenerateScenario(assignment, rnd)
	if err != nil {
		return nil, err
	}
	bindFreeCallVariables(&property.Call, assignment, rnd)

	call, err := property.Call.Materialize(assignment)
	if err != nil {
		return nil, err
	}

	subject := sub.NewSubject(factory())
	if err := subject.Establish(target); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetupMismatch, err)
	}

	universe := scenarioUniverse(target, call)
	pre := subject.Snapshot(universe)
	if satisfied, err := property.Condition.Check(pre, assignment); err != nil {
		return nil, err
	} else if !satisfied {
		return nil, fmt.Errorf("%w: precondition %v does not hold", ErrSetupMismatch, property.Condition)
	}

	receipt, err := subject.Run(property.Call.Mode, call)
	if err != nil {
		return nil, err
	}
	post := subject.Snapshot(universe)

	return &rlz.Context{
		Pre:        pre,
		Post:       post,
		Call:       call,
		Receipt:    receipt,
		Assignment: assignment,
	}, nil
}

// bindFreeCallVariables assigns random values to call arguments the
// precondition does not mention. The null address and the zero amount are
// over-represented among free arguments since most edge cases involve them.
func bindFreeCallVariables(spec *rlz.CallSpec, assignment gen.Assignment, rnd *rand.Rand) {
	for _, v := range spec.AddressVariables() {
		if _, bound := assignment[v]; bound {
			continue
		}
		if rnd.Intn(8) == 0 {
			assignment[v] = NullAddress.ToU256()
		} else {
			assignment[v] = RandomAddress(rnd).ToU256()
		}
	}
	if v := spec.AmountVariable(); v != "" {
		if _, bound := assignment[v]; !bound {
			if rnd.Intn(8) == 0 {
				assignment[v] = NewU256(0)
			} else {
				assignment[v] = RandU256(rnd)
			}
		}
	}
}

// scenarioUniverse collects every account a postcondition may want to observe:
// all accounts of the target state, all call arguments, and the null address.
func scenarioUniverse(target *st.State, call sub.Call) []Address {
	seen := map[Address]bool{NullAddress: true}
	for account := range target.Balances {
		seen[account] = true
	}
	for pair := range target.Allowances {
		seen[pair.Owner] = true
		seen[pair.Spender] = true
	}
	for _, account := range []Address{call.Caller, call.From, call.To, call.Owner, call.Spender} {
		seen[account] = true
	}
	universe := make([]Address, 0, len(seen))
	for account := range seen {
		universe = append(universe, account)
	}
	sort.Slice(universe, func(i, j int) bool {
		return universe[i].String() < universe[j].String()
	})
	return universe
}
