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
	"strings"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	"github.com/Fantom-foundation/Tick/ct/st"
)

// Condition is a property's precondition over the generated scenario: the
// pre-state established on the subject and the variable assignment feeding
// the call under test.
type Condition interface {
	// Check evaluates the Condition on a concrete scenario.
	Check(state *st.State, assignment gen.Assignment) (bool, error)

	// Restrict narrows the given StateGenerator such that generated
	// scenarios satisfy this Condition.
	Restrict(generator *gen.StateGenerator)

	fmt.Stringer
}

func value(assignment gen.Assignment, v gen.Variable) (U256, error) {
	res, found := assignment[v]
	if !found {
		return U256{}, fmt.Errorf("%w: %v", gen.ErrUnboundVariable, v)
	}
	return res, nil
}

////////////////////////////////////////////////////////////
// Conjunction

type conjunction struct {
	conditions []Condition
}

func And(conditions ...Condition) Condition {
	if len(conditions) == 1 {
		return conditions[0]
	}
	// Merge nested conjunctions into a single conjunction.
	res := []Condition{}
	for _, cur := range conditions {
		if c, ok := cur.(*conjunction); ok {
			res = append(res, c.conditions...)
		} else {
			res = append(res, cur)
		}
	}
	return &conjunction{conditions: res}
}

func (c *conjunction) Check(state *st.State, assignment gen.Assignment) (bool, error) {
	for _, cur := range c.conditions {
		r, err := cur.Check(state, assignment)
		if !r || err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *conjunction) Restrict(generator *gen.StateGenerator) {
	for _, cur := range c.conditions {
		cur.Restrict(generator)
	}
}

func (c *conjunction) String() string {
	if len(c.conditions) == 0 {
		return "true"
	}
	first := true
	var builder strings.Builder
	for _, cur := range c.conditions {
		if !first {
			builder.WriteString(" ∧ ")
		} else {
			first = false
		}
		builder.WriteString(cur.String())
	}
	return builder.String()
}

////////////////////////////////////////////////////////////
// Address conditions

type isNull struct {
	v gen.Variable
}

// IsNull requires an address variable to be the null address.
func IsNull(v gen.Variable) Condition {
	return &isNull{v}
}

func (c *isNull) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	if _, err := value(assignment, c.v); err != nil {
		return false, err
	}
	return assignment.Address(c.v).IsNull(), nil
}

func (c *isNull) Restrict(generator *gen.StateGenerator) {
	generator.MustBeNull(c.v)
}

func (c *isNull) String() string {
	return fmt.Sprintf("%v = null", c.v)
}

type isNotNull struct {
	v gen.Variable
}

// IsNotNull requires an address variable to differ from the null address.
func IsNotNull(v gen.Variable) Condition {
	return &isNotNull{v}
}

func (c *isNotNull) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	if _, err := value(assignment, c.v); err != nil {
		return false, err
	}
	return !assignment.Address(c.v).IsNull(), nil
}

func (c *isNotNull) Restrict(generator *gen.StateGenerator) {
	generator.MustNotBeNull(c.v)
}

func (c *isNotNull) String() string {
	return fmt.Sprintf("%v ≠ null", c.v)
}

type distinct struct {
	vs []gen.Variable
}

// Distinct requires the given address variables to resolve to pairwise
// different addresses.
func Distinct(vs ...gen.Variable) Condition {
	return &distinct{vs}
}

func (c *distinct) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	for i := 0; i < len(c.vs); i++ {
		if _, err := value(assignment, c.vs[i]); err != nil {
			return false, err
		}
		for j := i + 1; j < len(c.vs); j++ {
			if assignment.Address(c.vs[i]) == assignment.Address(c.vs[j]) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (c *distinct) Restrict(generator *gen.StateGenerator) {
	for i := 0; i < len(c.vs); i++ {
		for j := i + 1; j < len(c.vs); j++ {
			generator.MustDiffer(c.vs[i], c.vs[j])
		}
	}
}

func (c *distinct) String() string {
	parts := make([]string, len(c.vs))
	for i, v := range c.vs {
		parts[i] = v.String()
	}
	return "distinct(" + strings.Join(parts, ",") + ")"
}

type sameAddress struct {
	a, b gen.Variable
}

// SameAddress requires two address variables to alias the same account, the
// deliberate aliasing edge case of self-transfers.
func SameAddress(a, b gen.Variable) Condition {
	return &sameAddress{a, b}
}

func (c *sameAddress) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	if _, err := value(assignment, c.a); err != nil {
		return false, err
	}
	if _, err := value(assignment, c.b); err != nil {
		return false, err
	}
	return assignment.Address(c.a) == assignment.Address(c.b), nil
}

func (c *sameAddress) Restrict(generator *gen.StateGenerator) {
	generator.MustAlias(c.a, c.b)
}

func (c *sameAddress) String() string {
	return fmt.Sprintf("%v = %v", c.a, c.b)
}

////////////////////////////////////////////////////////////
// State bindings

type balanceIs struct {
	account gen.Variable
	amount  gen.Variable
}

// BalanceIs requires the pre-state balance of an account variable to equal
// the value of an amount variable.
func BalanceIs(account, amount gen.Variable) Condition {
	return &balanceIs{account, amount}
}

func (c *balanceIs) Check(state *st.State, assignment gen.Assignment) (bool, error) {
	if _, err := value(assignment, c.account); err != nil {
		return false, err
	}
	amount, err := value(assignment, c.amount)
	if err != nil {
		return false, err
	}
	return state.GetBalance(assignment.Address(c.account)).Eq(amount), nil
}

func (c *balanceIs) Restrict(generator *gen.StateGenerator) {
	generator.BindBalance(c.account, c.amount)
}

func (c *balanceIs) String() string {
	return fmt.Sprintf("balance(%v) = %v", c.account, c.amount)
}

type allowanceIs struct {
	owner   gen.Variable
	spender gen.Variable
	amount  gen.Variable
}

// AllowanceIs requires the pre-state allowance granted by owner to spender
// to equal the value of an amount variable.
func AllowanceIs(owner, spender, amount gen.Variable) Condition {
	return &allowanceIs{owner, spender, amount}
}

func (c *allowanceIs) Check(state *st.State, assignment gen.Assignment) (bool, error) {
	if _, err := value(assignment, c.owner); err != nil {
		return false, err
	}
	if _, err := value(assignment, c.spender); err != nil {
		return false, err
	}
	amount, err := value(assignment, c.amount)
	if err != nil {
		return false, err
	}
	return state.GetAllowance(assignment.Address(c.owner), assignment.Address(c.spender)).Eq(amount), nil
}

func (c *allowanceIs) Restrict(generator *gen.StateGenerator) {
	generator.BindAllowance(c.owner, c.spender, c.amount)
}

func (c *allowanceIs) String() string {
	return fmt.Sprintf("allowance(%v,%v) = %v", c.owner, c.spender, c.amount)
}

////////////////////////////////////////////////////////////
// Amount conditions

type valueEq struct {
	v   gen.Variable
	rhs U256
}

// ValueEq pins an amount variable to a constant.
func ValueEq(v gen.Variable, rhs U256) Condition {
	return &valueEq{v, rhs}
}

func (c *valueEq) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.v)
	if err != nil {
		return false, err
	}
	return lhs.Eq(c.rhs), nil
}

func (c *valueEq) Restrict(generator *gen.StateGenerator) {
	generator.SetAmount(c.v, c.rhs)
}

func (c *valueEq) String() string {
	return fmt.Sprintf("%v = %v", c.v, c.rhs)
}

type valueAtLeast struct {
	v   gen.Variable
	rhs U256
}

// ValueAtLeast requires $v ≥ rhs.
func ValueAtLeast(v gen.Variable, rhs U256) Condition {
	return &valueAtLeast{v, rhs}
}

func (c *valueAtLeast) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.v)
	if err != nil {
		return false, err
	}
	return lhs.Ge(c.rhs), nil
}

func (c *valueAtLeast) Restrict(generator *gen.StateGenerator) {
	generator.AddAmountLowerBoundary(c.v, c.rhs)
}

func (c *valueAtLeast) String() string {
	return fmt.Sprintf("%v ≥ %v", c.v, c.rhs)
}

type valueAtMost struct {
	v   gen.Variable
	rhs U256
}

// ValueAtMost requires $v ≤ rhs.
func ValueAtMost(v gen.Variable, rhs U256) Condition {
	return &valueAtMost{v, rhs}
}

func (c *valueAtMost) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.v)
	if err != nil {
		return false, err
	}
	return lhs.Le(c.rhs), nil
}

func (c *valueAtMost) Restrict(generator *gen.StateGenerator) {
	generator.AddAmountUpperBoundary(c.v, c.rhs)
}

func (c *valueAtMost) String() string {
	return fmt.Sprintf("%v ≤ %v", c.v, c.rhs)
}

type valueLe struct {
	a, b gen.Variable
}

// ValueLe requires $a ≤ $b.
func ValueLe(a, b gen.Variable) Condition {
	return &valueLe{a, b}
}

func (c *valueLe) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.a)
	if err != nil {
		return false, err
	}
	rhs, err := value(assignment, c.b)
	if err != nil {
		return false, err
	}
	return lhs.Le(rhs), nil
}

func (c *valueLe) Restrict(generator *gen.StateGenerator) {
	generator.AddAmountLe(c.a, c.b)
}

func (c *valueLe) String() string {
	return fmt.Sprintf("%v ≤ %v", c.a, c.b)
}

type valueLt struct {
	a, b gen.Variable
}

// ValueLt requires $a < $b.
func ValueLt(a, b gen.Variable) Condition {
	return &valueLt{a, b}
}

func (c *valueLt) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.a)
	if err != nil {
		return false, err
	}
	rhs, err := value(assignment, c.b)
	if err != nil {
		return false, err
	}
	return lhs.Lt(rhs), nil
}

func (c *valueLt) Restrict(generator *gen.StateGenerator) {
	generator.AddAmountLt(c.a, c.b)
}

func (c *valueLt) String() string {
	return fmt.Sprintf("%v < %v", c.a, c.b)
}

type sameValue struct {
	a, b gen.Variable
}

// SameValue requires two amount variables to carry the same value.
func SameValue(a, b gen.Variable) Condition {
	return &sameValue{a, b}
}

func (c *sameValue) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.a)
	if err != nil {
		return false, err
	}
	rhs, err := value(assignment, c.b)
	if err != nil {
		return false, err
	}
	return lhs.Eq(rhs), nil
}

func (c *sameValue) Restrict(generator *gen.StateGenerator) {
	generator.AddAmountEq(c.a, c.b)
}

func (c *sameValue) String() string {
	return fmt.Sprintf("%v = %v", c.a, c.b)
}

type sumFits struct {
	a, b gen.Variable
}

// SumFits requires $a + $b to be representable.
func SumFits(a, b gen.Variable) Condition {
	return &sumFits{a, b}
}

func (c *sumFits) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.a)
	if err != nil {
		return false, err
	}
	rhs, err := value(assignment, c.b)
	if err != nil {
		return false, err
	}
	_, overflow := lhs.AddOverflow(rhs)
	return !overflow, nil
}

func (c *sumFits) Restrict(generator *gen.StateGenerator) {
	generator.AddSumFits(c.a, c.b)
}

func (c *sumFits) String() string {
	return fmt.Sprintf("%v + %v ≤ max", c.a, c.b)
}

type sumOverflows struct {
	a, b gen.Variable
}

// SumOverflows requires $a + $b to exceed the maximum representable amount.
func SumOverflows(a, b gen.Variable) Condition {
	return &sumOverflows{a, b}
}

func (c *sumOverflows) Check(_ *st.State, assignment gen.Assignment) (bool, error) {
	lhs, err := value(assignment, c.a)
	if err != nil {
		return false, err
	}
	rhs, err := value(assignment, c.b)
	if err != nil {
		return false, err
	}
	_, overflow := lhs.AddOverflow(rhs)
	return overflow, nil
}

func (c *sumOverflows) Restrict(generator *gen.StateGenerator) {
	generator.AddSumOverflows(c.a, c.b)
}

func (c *sumOverflows) String() string {
	return fmt.Sprintf("%v + %v > max", c.a, c.b)
}

////////////////////////////////////////////////////////////
// Supply conditions

type boundedSupply struct{}

// BoundedSupply requires the sum of all balances of the generated state to be
// representable. Properties relating balances to the total supply need it;
// other states deliberately include wrapped supplies as edge cases.
func BoundedSupply() Condition {
	return boundedSupply{}
}

func (boundedSupply) Check(state *st.State, _ gen.Assignment) (bool, error) {
	sum := NewU256(0)
	for _, balance := range state.Balances {
		var overflow bool
		sum, overflow = sum.AddOverflow(balance)
		if overflow {
			return false, nil
		}
	}
	return true, nil
}

func (boundedSupply) Restrict(generator *gen.StateGenerator) {
	generator.RestrictBoundedSupply()
}

func (boundedSupply) String() string {
	return "Σbalances ≤ max"
}
