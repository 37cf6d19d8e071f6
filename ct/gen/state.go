// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package gen

import (
	"fmt"
	"slices"
	"strings"

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/st"
)

// StateGenerator is a utility for generating account states that satisfy a
// set of constraints, or for identifying a constraint set as unsatisfiable.
// It provides:
//
//   - address constraints: a variable may be pinned to the null address,
//     excluded from it, aliased with another variable, or forced apart;
//
//   - amount constraints: constant interval bounds per variable plus
//     relational clauses between two variables (≤, <, =, and the two
//     arithmetic clauses a+b ≤ max and a+b > max needed for overflow
//     properties);
//
//   - state bindings: the balance of an address variable or the allowance of
//     an address-variable pair is fixed to the value of an amount variable.
//
// All unconstrained degrees of freedom are filled with random values to keep
// the entropy of generated states high. Generate reports ErrUnsatisfiable on
// conflicting constraints.
type StateGenerator struct {
	nullConstraints     []Variable
	nonNullConstraints  []Variable
	aliasConstraints    [][2]Variable
	distinctConstraints [][2]Variable

	amountOrder  []Variable
	amountBounds map[Variable]*U256Solver
	relations    []relation

	balances   []balanceConstraint
	allowances []allowanceConstraint

	boundedSupply bool
}

type relationKind int

const (
	relLe relationKind = iota
	relLt
	relEq
	relSumFits
	relSumOverflows
)

type relation struct {
	kind relationKind
	a, b Variable
}

func (r relation) String() string {
	switch r.kind {
	case relLe:
		return fmt.Sprintf("%v ≤ %v", r.a, r.b)
	case relLt:
		return fmt.Sprintf("%v < %v", r.a, r.b)
	case relEq:
		return fmt.Sprintf("%v = %v", r.a, r.b)
	case relSumFits:
		return fmt.Sprintf("%v + %v ≤ max", r.a, r.b)
	case relSumOverflows:
		return fmt.Sprintf("%v + %v > max", r.a, r.b)
	default:
		return fmt.Sprintf("relation(%d)", r.kind)
	}
}

type balanceConstraint struct {
	account Variable
	value   Variable
}

type allowanceConstraint struct {
	owner   Variable
	spender Variable
	value   Variable
}

// NewStateGenerator creates a generator without any initial constraints.
func NewStateGenerator() *StateGenerator {
	return &StateGenerator{
		amountBounds: map[Variable]*U256Solver{},
	}
}

func (g *StateGenerator) Clone() *StateGenerator {
	bounds := make(map[Variable]*U256Solver, len(g.amountBounds))
	for v, solver := range g.amountBounds {
		bounds[v] = solver.Clone()
	}
	return &StateGenerator{
		nullConstraints:     slices.Clone(g.nullConstraints),
		nonNullConstraints:  slices.Clone(g.nonNullConstraints),
		aliasConstraints:    slices.Clone(g.aliasConstraints),
		distinctConstraints: slices.Clone(g.distinctConstraints),
		amountOrder:         slices.Clone(g.amountOrder),
		amountBounds:        bounds,
		relations:           slices.Clone(g.relations),
		balances:            slices.Clone(g.balances),
		allowances:          slices.Clone(g.allowances),
		boundedSupply:       g.boundedSupply,
	}
}

// MustBeNull pins an address variable to the null address.
func (g *StateGenerator) MustBeNull(v Variable) {
	if !slices.Contains(g.nullConstraints, v) {
		g.nullConstraints = append(g.nullConstraints, v)
	}
}

// MustNotBeNull excludes the null address for an address variable.
func (g *StateGenerator) MustNotBeNull(v Variable) {
	if !slices.Contains(g.nonNullConstraints, v) {
		g.nonNullConstraints = append(g.nonNullConstraints, v)
	}
}

// MustAlias forces two address variables onto the same concrete address.
func (g *StateGenerator) MustAlias(a, b Variable) {
	pair := [2]Variable{a, b}
	if !slices.Contains(g.aliasConstraints, pair) {
		g.aliasConstraints = append(g.aliasConstraints, pair)
	}
}

// MustDiffer forces two address variables onto different addresses.
func (g *StateGenerator) MustDiffer(a, b Variable) {
	pair := [2]Variable{a, b}
	if !slices.Contains(g.distinctConstraints, pair) {
		g.distinctConstraints = append(g.distinctConstraints, pair)
	}
}

func (g *StateGenerator) ensureAmount(v Variable) *U256Solver {
	solver, found := g.amountBounds[v]
	if !found {
		solver = NewU256Solver()
		g.amountBounds[v] = solver
		g.amountOrder = append(g.amountOrder, v)
	}
	return solver
}

// AddAmountLowerBoundary constrains an amount variable to be at least min.
func (g *StateGenerator) AddAmountLowerBoundary(v Variable, min U256) {
	g.ensureAmount(v).AddLowerBoundary(min)
}

// AddAmountUpperBoundary constrains an amount variable to be at most max.
func (g *StateGenerator) AddAmountUpperBoundary(v Variable, max U256) {
	g.ensureAmount(v).AddUpperBoundary(max)
}

// SetAmount pins an amount variable to a constant.
func (g *StateGenerator) SetAmount(v Variable, value U256) {
	g.ensureAmount(v).AddEqualityConstraint(value)
}

func (g *StateGenerator) addRelation(kind relationKind, a, b Variable) {
	g.ensureAmount(a)
	g.ensureAmount(b)
	r := relation{kind, a, b}
	if !slices.Contains(g.relations, r) {
		g.relations = append(g.relations, r)
	}
}

// AddAmountLe constrains $a ≤ $b.
func (g *StateGenerator) AddAmountLe(a, b Variable) {
	g.addRelation(relLe, a, b)
}

// AddAmountLt constrains $a < $b.
func (g *StateGenerator) AddAmountLt(a, b Variable) {
	g.addRelation(relLt, a, b)
}

// AddAmountEq constrains $a = $b.
func (g *StateGenerator) AddAmountEq(a, b Variable) {
	g.addRelation(relEq, a, b)
}

// AddSumFits constrains $a + $b to be representable.
func (g *StateGenerator) AddSumFits(a, b Variable) {
	g.addRelation(relSumFits, a, b)
}

// AddSumOverflows constrains $a + $b to exceed the maximum representable
// amount.
func (g *StateGenerator) AddSumOverflows(a, b Variable) {
	g.addRelation(relSumOverflows, a, b)
}

// BindBalance fixes the balance of the account denoted by an address
// variable to the value of an amount variable.
func (g *StateGenerator) BindBalance(account, value Variable) {
	c := balanceConstraint{account, value}
	if !slices.Contains(g.balances, c) {
		g.balances = append(g.balances, c)
		g.ensureAmount(value)
	}
}

// BindAllowance fixes the allowance granted by owner to spender to the value
// of an amount variable.
func (g *StateGenerator) BindAllowance(owner, spender, value Variable) {
	c := allowanceConstraint{owner, spender, value}
	if !slices.Contains(g.allowances, c) {
		g.allowances = append(g.allowances, c)
		g.ensureAmount(value)
	}
}

// RestrictBoundedSupply requires the sum of all generated balances, noise
// accounts included, to be representable. Properties relating individual
// balances to the total supply need this; all other states may wrap.
func (g *StateGenerator) RestrictBoundedSupply() {
	g.boundedSupply = true
}

// Generate produces a state satisfying the constraints set on this generator
// or returns ErrUnsatisfiable. Variables already bound in the given
// assignment keep their values and are checked against the constraints; all
// remaining variables are bound by the generation process.
func (g *StateGenerator) Generate(assignment Assignment, rnd *rand.Rand) (*st.State, error) {
	if assignment == nil {
		assignment = Assignment{}
	}
	if err := g.solveAddresses(assignment, rnd); err != nil {
		return nil, err
	}
	if err := g.solveAmounts(assignment, rnd); err != nil {
		return nil, err
	}
	return g.materialize(assignment, rnd)
}

// AmountVariables lists all variables used in an amount position, in their
// solve order.
func (g *StateGenerator) AmountVariables() []Variable {
	return slices.Clone(g.amountOrder)
}

// AddressVariables lists all variables used in an address position.
func (g *StateGenerator) AddressVariables() []Variable {
	res := []Variable{}
	add := func(v Variable) {
		if !slices.Contains(res, v) {
			res = append(res, v)
		}
	}
	for _, v := range g.nullConstraints {
		add(v)
	}
	for _, v := range g.nonNullConstraints {
		add(v)
	}
	for _, pair := range g.aliasConstraints {
		add(pair[0])
		add(pair[1])
	}
	for _, pair := range g.distinctConstraints {
		add(pair[0])
		add(pair[1])
	}
	for _, c := range g.balances {
		add(c.account)
	}
	for _, c := range g.allowances {
		add(c.owner)
		add(c.spender)
	}
	return res
}

func (g *StateGenerator) solveAddresses(assignment Assignment, rnd *rand.Rand) error {
	variables := g.AddressVariables()

	// Alias constraints induce groups of variables sharing one address.
	representative := map[Variable]Variable{}
	var find func(Variable) Variable
	find = func(v Variable) Variable {
		parent, found := representative[v]
		if !found || parent == v {
			representative[v] = v
			return v
		}
		root := find(parent)
		representative[v] = root
		return root
	}
	for _, pair := range g.aliasConstraints {
		representative[find(pair[0])] = find(pair[1])
	}

	groups := map[Variable][]Variable{}
	for _, v := range variables {
		root := find(v)
		groups[root] = append(groups[root], v)
	}

	for _, pair := range g.distinctConstraints {
		if find(pair[0]) == find(pair[1]) {
			return fmt.Errorf("%w, %v and %v are aliased but required to differ", ErrUnsatisfiable, pair[0], pair[1])
		}
	}

	used := map[Address]bool{}
	for root, members := range groups {
		mustBeNull := false
		mustNotBeNull := false
		var pinned *Address
		for _, member := range members {
			if slices.Contains(g.nullConstraints, member) {
				mustBeNull = true
			}
			if slices.Contains(g.nonNullConstraints, member) {
				mustNotBeNull = true
			}
			if value, bound := assignment[member]; bound {
				address := NewAddress(value)
				if pinned != nil && *pinned != address {
					return fmt.Errorf("%w, aliased variables %v bound to different addresses", ErrUnsatisfiable, members)
				}
				pinned = &address
			}
		}
		if mustBeNull && mustNotBeNull {
			return fmt.Errorf("%w, conflicting null constraints for %v", ErrUnsatisfiable, root)
		}
		var address Address
		switch {
		case pinned != nil:
			address = *pinned
			if mustBeNull && !address.IsNull() {
				return fmt.Errorf("%w, %v bound to %v but required to be null", ErrUnsatisfiable, root, address)
			}
			if mustNotBeNull && address.IsNull() {
				return fmt.Errorf("%w, %v bound to the null address but required not to be", ErrUnsatisfiable, root)
			}
		case mustBeNull:
			address = NullAddress
		default:
			for {
				address = RandomAddress(rnd)
				if !used[address] {
					break
				}
			}
		}
		used[address] = true
		for _, member := range members {
			assignment[member] = address.ToU256()
		}
	}

	// Randomly chosen addresses are pairwise distinct by construction, but
	// pre-bound values may violate explicit distinctness constraints.
	for _, pair := range g.distinctConstraints {
		if assignment.Address(pair[0]) == assignment.Address(pair[1]) {
			return fmt.Errorf("%w, %v and %v resolve to the same address", ErrUnsatisfiable, pair[0], pair[1])
		}
	}
	return nil
}

func (g *StateGenerator) solveAmounts(assignment Assignment, rnd *rand.Rand) error {
	for _, v := range g.amountOrder {
		solver := g.amountBounds[v].Clone()
		for _, r := range g.relations {
			if err := applyRelation(solver, r, v, assignment); err != nil {
				return err
			}
		}
		if value, bound := assignment[v]; bound {
			if !solver.Contains(value) {
				return fmt.Errorf("%w, %v bound to %v outside %s", ErrUnsatisfiable, v, value, solver.Print(v.String()))
			}
			continue
		}
		value, err := solver.Generate(rnd)
		if err != nil {
			return fmt.Errorf("%w, no value for %v in %s", ErrUnsatisfiable, v, solver.Print(v.String()))
		}
		assignment[v] = value
	}

	// Relations between two pre-bound variables are not covered by the
	// interval propagation above; re-check everything on the final values.
	for _, r := range g.relations {
		a, b := assignment[r.a], assignment[r.b]
		holds := false
		switch r.kind {
		case relLe:
			holds = a.Le(b)
		case relLt:
			holds = a.Lt(b)
		case relEq:
			holds = a.Eq(b)
		case relSumFits:
			_, overflow := a.AddOverflow(b)
			holds = !overflow
		case relSumOverflows:
			_, overflow := a.AddOverflow(b)
			holds = overflow
		}
		if !holds {
			return fmt.Errorf("%w, relation %v violated by %v", ErrUnsatisfiable, r, assignment)
		}
	}
	return nil
}

// applyRelation narrows the solver of the variable v using the already
// assigned counterpart of the relation, if any.
func applyRelation(solver *U256Solver, r relation, v Variable, assignment Assignment) error {
	var other Variable
	switch v {
	case r.a:
		other = r.b
	case r.b:
		other = r.a
	default:
		return nil
	}
	value, bound := assignment[other]
	if !bound {
		return nil
	}
	switch r.kind {
	case relLe:
		if v == r.a {
			solver.AddUpperBoundary(value)
		} else {
			solver.AddLowerBoundary(value)
		}
	case relLt:
		if v == r.a {
			if value.IsZero() {
				return fmt.Errorf("%w, %v must be less than zero", ErrUnsatisfiable, v)
			}
			solver.AddUpperBoundary(value.Sub(NewU256(1)))
		} else {
			if value.Eq(MaxU256()) {
				return fmt.Errorf("%w, %v must exceed the maximum amount", ErrUnsatisfiable, v)
			}
			solver.AddLowerBoundary(value.Add(NewU256(1)))
		}
	case relEq:
		solver.AddEqualityConstraint(value)
	case relSumFits:
		solver.AddUpperBoundary(MaxU256().Sub(value))
	case relSumOverflows:
		if value.IsZero() {
			return fmt.Errorf("%w, a sum with zero cannot overflow", ErrUnsatisfiable)
		}
		solver.AddLowerBoundary(MaxU256().Sub(value).Add(NewU256(1)))
	}
	return nil
}

func (g *StateGenerator) materialize(assignment Assignment, rnd *rand.Rand) (*st.State, error) {
	state := st.NewState()

	boundBalances := map[Address]U256{}
	for _, c := range g.balances {
		account := assignment.Address(c.account)
		value := assignment[c.value]
		if account.IsNull() && !value.IsZero() {
			return nil, fmt.Errorf("%w, non-zero balance for the null address", ErrUnsatisfiable)
		}
		if existing, found := boundBalances[account]; found && existing.Ne(value) {
			return nil, fmt.Errorf("%w, conflicting balances for %v: %v vs %v", ErrUnsatisfiable, account, existing, value)
		}
		boundBalances[account] = value
		state.SetBalance(account, value)
	}

	boundAllowances := map[st.AllowancePair]U256{}
	for _, c := range g.allowances {
		owner := assignment.Address(c.owner)
		spender := assignment.Address(c.spender)
		value := assignment[c.value]
		if (owner.IsNull() || spender.IsNull()) && !value.IsZero() {
			return nil, fmt.Errorf("%w, non-zero allowance involving the null address", ErrUnsatisfiable)
		}
		pair := st.AllowancePair{Owner: owner, Spender: spender}
		if existing, found := boundAllowances[pair]; found && existing.Ne(value) {
			return nil, fmt.Errorf("%w, conflicting allowances for (%v,%v)", ErrUnsatisfiable, owner, spender)
		}
		boundAllowances[pair] = value
		state.SetAllowance(owner, spender, value)
	}

	// Fund a few unrelated accounts to give frame properties something to
	// observe.
	supply := state.SumOfBalances()
	if g.boundedSupply {
		if _, overflow := sumWithOverflow(state); overflow {
			return nil, fmt.Errorf("%w, constrained balances exceed the representable supply", ErrUnsatisfiable)
		}
	}
	for i, count := 0, rnd.Intn(3); i < count; i++ {
		account := RandomAddress(rnd)
		if !state.GetBalance(account).IsZero() {
			continue
		}
		var balance U256
		if g.boundedSupply {
			headroom, _ := MaxU256().CheckedSub(supply)
			if headroom.IsZero() {
				break
			}
			if headroom.Eq(MaxU256()) {
				// full range, headroom+1 would wrap to zero
				balance = RandU256(rnd)
			} else {
				balance = RandU256Below(rnd, headroom.Add(NewU256(1)))
			}
		} else {
			balance = RandU256(rnd)
		}
		state.SetBalance(account, balance)
		supply = supply.Add(balance)
	}

	state.TotalSupply = state.SumOfBalances()
	return state, nil
}

func sumWithOverflow(state *st.State) (U256, bool) {
	sum := NewU256(0)
	for _, balance := range state.Balances {
		var overflow bool
		sum, overflow = sum.AddOverflow(balance)
		if overflow {
			return sum, true
		}
	}
	return sum, false
}

func (g *StateGenerator) String() string {
	parts := []string{}
	for _, v := range g.nullConstraints {
		parts = append(parts, fmt.Sprintf("%v = null", v))
	}
	for _, v := range g.nonNullConstraints {
		parts = append(parts, fmt.Sprintf("%v ≠ null", v))
	}
	for _, pair := range g.aliasConstraints {
		parts = append(parts, fmt.Sprintf("%v = %v", pair[0], pair[1]))
	}
	for _, pair := range g.distinctConstraints {
		parts = append(parts, fmt.Sprintf("%v ≠ %v", pair[0], pair[1]))
	}
	for _, v := range g.amountOrder {
		parts = append(parts, g.amountBounds[v].Print(v.String()))
	}
	for _, r := range g.relations {
		parts = append(parts, r.String())
	}
	for _, c := range g.balances {
		parts = append(parts, fmt.Sprintf("balance(%v) = %v", c.account, c.value))
	}
	for _, c := range g.allowances {
		parts = append(parts, fmt.Sprintf("allowance(%v,%v) = %v", c.owner, c.spender, c.value))
	}
	if g.boundedSupply {
		parts = append(parts, "Σbalances ≤ max")
	}
	if len(parts) == 0 {
		return "{true}"
	}
	return "{" + strings.Join(parts, ",") + "}"
}
