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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	. "github.com/Fantom-foundation/Tick/ct/rlz"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

func TestEvaluateProperty_IsDeterministicForFixedSeed(t *testing.T) {
	property := Spec.GetProperty("ERC20-STDPROP-07")
	budget := Budget{Samples: 50}

	first, err := EvaluateProperty(property, sub.NewSkimmingToken, budget, 42)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	second, err := EvaluateProperty(property, sub.NewSkimmingToken, budget, 42)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if first.Verdict != second.Verdict || first.Samples != second.Samples {
		t.Fatalf("verdicts differ: (%v,%d) vs (%v,%d)", first.Verdict, first.Samples, second.Verdict, second.Samples)
	}
	if first.Verdict == Fail {
		if first.Witness.Call.String() != second.Witness.Call.String() {
			t.Errorf("witnesses differ: %v vs %v", first.Witness.Call, second.Witness.Call)
		}
	}
}

func TestEvaluateProperty_UnsatisfiablePreconditionIsInconclusive(t *testing.T) {
	account := gen.Variable("account")
	property := &Property{
		Id:        "TEST-INCONCLUSIVE",
		Name:      "contradiction",
		Condition: And(IsNull(account), IsNotNull(account)),
		Call:      CallSpec{Op: sub.BalanceOf, Owner: account},
		Check:     func(ctx *Context) error { return nil },
	}
	result, err := EvaluateProperty(property, sub.NewReferenceToken, Budget{Samples: 10}, 0)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if result.Verdict != Inconclusive {
		t.Errorf("verdict is %v, want INCONCLUSIVE", result.Verdict)
	}
	if result.Unsatisfiable != 10 {
		t.Errorf("%d attempts discarded, want 10", result.Unsatisfiable)
	}
}

func TestEvaluateProperty_DeadlineOverrunIsInconclusive(t *testing.T) {
	property := Spec.GetProperty("ERC20-STDPROP-07")

	// Far more samples than fit into the time budget; the run is cut short
	// and must not be reported as a pass.
	budget := Budget{Samples: 1 << 30, Deadline: time.Now().Add(100 * time.Millisecond)}
	result, err := EvaluateProperty(property, sub.NewReferenceToken, budget, 0)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if !result.TimedOut {
		t.Errorf("deadline overrun not recorded")
	}
	if result.Verdict != Inconclusive {
		t.Errorf("verdict after %d of %d samples is %v, want INCONCLUSIVE", result.Samples, budget.Samples, result.Verdict)
	}
}

func TestEvaluateProperty_ExpiredDeadlineRunsNoSamples(t *testing.T) {
	property := Spec.GetProperty("ERC20-STDPROP-07")
	budget := Budget{Samples: 100, Deadline: time.Now().Add(-time.Second)}
	result, err := EvaluateProperty(property, sub.NewReferenceToken, budget, 0)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if result.Samples != 0 || !result.TimedOut || result.Verdict != Inconclusive {
		t.Errorf("expired deadline produced (%d samples, timedOut %t, %v)", result.Samples, result.TimedOut, result.Verdict)
	}
}

func TestEvaluateProperty_FailureProducesShrunkWitness(t *testing.T) {
	// The skimming token under-delivers every non-zero transfer, so the
	// minimal counterexample transfers a single unit.
	property := Spec.GetProperty("ERC20-STDPROP-07")
	result, err := EvaluateProperty(property, sub.NewSkimmingToken, Budget{Samples: 500}, 0)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if result.Verdict != Fail {
		t.Fatalf("defect not detected, verdict %v", result.Verdict)
	}
	witness := result.Witness
	if witness.Call.Amount.Ne(NewU256(1)) {
		t.Errorf("witness amount is %v, want the shrunk value 1", witness.Call.Amount)
	}
	if witness.Call.Caller != NewAddressFromInt(1) {
		t.Errorf("witness caller is %v, want the canonical address 1", witness.Call.Caller)
	}
	if witness.Reason == "" {
		t.Errorf("witness carries no reason")
	}
}

func TestWitness_JsonExportRoundTrips(t *testing.T) {
	property := Spec.GetProperty("ERC20-STDPROP-14")
	result, err := EvaluateProperty(property, sub.NewUncheckedBalanceToken, Budget{Samples: 500}, 0)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if result.Verdict != Fail {
		t.Fatalf("defect not detected, verdict %v", result.Verdict)
	}

	path := filepath.Join(t.TempDir(), "witness.json")
	if err := ExportWitnessJSON(result.Witness, path); err != nil {
		t.Fatalf("failed to export witness: %v", err)
	}
	restored, err := ImportWitnessJSON(path)
	if err != nil {
		t.Fatalf("failed to import witness: %v", err)
	}

	if restored.Property != result.Witness.Property {
		t.Errorf("property changed from %s to %s", result.Witness.Property, restored.Property)
	}
	if restored.Call != result.Witness.Call {
		t.Errorf("call changed from %v to %v", result.Witness.Call, restored.Call)
	}
	if !restored.Pre.Eq(result.Witness.Pre) || !restored.Post.Eq(result.Witness.Post) {
		t.Errorf("states changed during the round trip")
	}
}

func TestForEachProperty_ResultsKeepCatalogOrder(t *testing.T) {
	properties := Spec.GetProperties()
	evaluate := func(property *Property) (Result, error) {
		return Result{Property: property, Samples: 1}, nil
	}
	results, err := ForEachProperty(properties, evaluate, func(_ time.Duration, _ float64, _ int64) {}, 4)
	if err != nil {
		t.Fatalf("enumeration failed: %v", err)
	}
	if len(results) != len(properties) {
		t.Fatalf("%d results for %d properties", len(results), len(properties))
	}
	for i, result := range results {
		if result.Property != properties[i] {
			t.Errorf("result %d belongs to %v", i, result.Property)
		}
	}
}

func TestForEachProperty_ErrorsAbortTheRun(t *testing.T) {
	properties := Spec.GetProperties()
	evaluate := func(property *Property) (Result, error) {
		return Result{}, fmt.Errorf("injected failure")
	}
	_, err := ForEachProperty(properties, evaluate, func(_ time.Duration, _ float64, _ int64) {}, 4)
	if err == nil {
		t.Errorf("injected failure not reported")
	}
}
