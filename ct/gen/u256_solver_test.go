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
	"errors"
	"testing"

	"pgregory.net/rand"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

func TestU256Solver_UnconstrainedSolverCanProduceValue(t *testing.T) {
	rnd := rand.New(0)
	solver := NewU256Solver()
	if _, err := solver.Generate(rnd); err != nil {
		t.Errorf("unexpected error during generation: %v", err)
	}
}

func TestU256Solver_BoundariesAreRespected(t *testing.T) {
	rnd := rand.New(0)
	solver := NewU256Solver()
	solver.AddLowerBoundary(NewU256(10))
	solver.AddUpperBoundary(NewU256(20))
	for i := 0; i < 100; i++ {
		value, err := solver.Generate(rnd)
		if err != nil {
			t.Fatalf("unexpected error during generation: %v", err)
		}
		if value.Lt(NewU256(10)) || value.Gt(NewU256(20)) {
			t.Fatalf("generated %v outside [10,20]", value)
		}
	}
}

func TestU256Solver_TighterBoundsWin(t *testing.T) {
	solver := NewU256Solver()
	solver.AddLowerBoundary(NewU256(10))
	solver.AddLowerBoundary(NewU256(5)) // < no effect
	solver.AddUpperBoundary(NewU256(20))
	solver.AddUpperBoundary(NewU256(30)) // < no effect
	if solver.GetMin().Ne(NewU256(10)) || solver.GetMax().Ne(NewU256(20)) {
		t.Errorf("interval is [%v,%v], want [10,20]", solver.GetMin(), solver.GetMax())
	}
}

func TestU256Solver_EqualityConstraintPinsValue(t *testing.T) {
	rnd := rand.New(0)
	solver := NewU256Solver()
	solver.AddEqualityConstraint(NewU256(42))
	for i := 0; i < 10; i++ {
		value, err := solver.Generate(rnd)
		if err != nil {
			t.Fatalf("unexpected error during generation: %v", err)
		}
		if value.Ne(NewU256(42)) {
			t.Fatalf("generated %v, want 42", value)
		}
	}
}

func TestU256Solver_ConflictingBoundsAreUnsatisfiable(t *testing.T) {
	rnd := rand.New(0)
	solver := NewU256Solver()
	solver.AddLowerBoundary(NewU256(20))
	solver.AddUpperBoundary(NewU256(10))
	if solver.IsSatisfiable() {
		t.Errorf("conflicting bounds reported as satisfiable")
	}
	if _, err := solver.Generate(rnd); !errors.Is(err, ErrUnsatisfiable) {
		t.Errorf("expected ErrUnsatisfiable, got %v", err)
	}
}

func TestU256Solver_GenerateCoversBoundaries(t *testing.T) {
	rnd := rand.New(0)
	solver := NewU256Solver()
	solver.AddLowerBoundary(NewU256(0))
	solver.AddUpperBoundary(NewU256(1000))
	sawMin, sawMax := false, false
	for i := 0; i < 1000; i++ {
		value, err := solver.Generate(rnd)
		if err != nil {
			t.Fatalf("unexpected error during generation: %v", err)
		}
		sawMin = sawMin || value.IsZero()
		sawMax = sawMax || value.Eq(NewU256(1000))
	}
	if !sawMin || !sawMax {
		t.Errorf("boundary values under-represented: min %t, max %t", sawMin, sawMax)
	}
}

func TestU256Solver_CloneAndRestore(t *testing.T) {
	solver := NewU256Solver()
	solver.AddLowerBoundary(NewU256(10))
	backup := solver.Clone()

	solver.AddUpperBoundary(NewU256(5))
	if solver.IsSatisfiable() {
		t.Fatalf("narrowed solver should be unsatisfiable")
	}

	solver.Restore(backup)
	if !solver.IsSatisfiable() {
		t.Errorf("restore did not recover the previous interval")
	}
}
