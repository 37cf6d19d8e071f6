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

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// U256Solver is a utility to solve conjunctions of interval clauses
//
//	clause ::= X < C | X ≤ C | X = C | X ≥ C | X > C
//
// over a single 256-bit amount X, where C are constants. It maintains the
// tightest enclosing interval and samples a satisfying value on demand.
type U256Solver struct {
	min, max U256 // inclusive boundaries
}

func NewU256Solver() *U256Solver {
	return &U256Solver{min: NewU256(0), max: MaxU256()}
}

func (s *U256Solver) GetMin() U256 {
	return s.min
}

func (s *U256Solver) GetMax() U256 {
	return s.max
}

func (s *U256Solver) AddLowerBoundary(min U256) {
	if min.Gt(s.min) {
		s.min = min
	}
}

func (s *U256Solver) AddUpperBoundary(max U256) {
	if max.Lt(s.max) {
		s.max = max
	}
}

func (s *U256Solver) AddEqualityConstraint(value U256) {
	s.AddLowerBoundary(value)
	s.AddUpperBoundary(value)
}

func (s *U256Solver) IsSatisfiable() bool {
	return !s.min.Gt(s.max)
}

func (s *U256Solver) Contains(value U256) bool {
	return !value.Lt(s.min) && !value.Gt(s.max)
}

func (s *U256Solver) Clone() *U256Solver {
	return &U256Solver{min: s.min, max: s.max}
}

func (s *U256Solver) Restore(backup *U256Solver) {
	*s = *backup
}

// Generate picks a value satisfying the accumulated constraints or reports
// ErrUnsatisfiable. Interval boundaries are over-represented since the
// catalog's interesting behavior lives at them.
func (s *U256Solver) Generate(rnd *rand.Rand) (U256, error) {
	if !s.IsSatisfiable() {
		return U256{}, ErrUnsatisfiable
	}
	if rnd.Intn(4) == 0 {
		candidates := []U256{
			s.min,
			s.max,
			s.min.Add(NewU256(1)),
			s.max.Sub(NewU256(1)),
		}
		candidate := candidates[rnd.Intn(len(candidates))]
		if s.Contains(candidate) {
			return candidate, nil
		}
	}
	width := s.max.Sub(s.min)
	if width.Eq(MaxU256()) {
		return RandU256(rnd), nil
	}
	offset := RandU256Below(rnd, width.Add(NewU256(1)))
	return s.min.Add(offset), nil
}

func (s *U256Solver) String() string {
	return s.Print("X")
}

func (s *U256Solver) Print(value string) string {
	if s.min.Eq(s.max) {
		return fmt.Sprintf("%s=%v", value, s.min)
	}
	if s.min.Gt(s.max) {
		return fmt.Sprintf("unsatisfiable(%s)", value)
	}
	return fmt.Sprintf("%v≤%s≤%v", s.min, value, s.max)
}
