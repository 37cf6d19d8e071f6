// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	cliUtils "github.com/Fantom-foundation/Tick/ct/driver/cli"
	"github.com/Fantom-foundation/Tick/ct/rlz"
	"github.com/Fantom-foundation/Tick/ct/spc"
	"github.com/Fantom-foundation/Tick/ct/sub"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Evaluate the property catalog against a token implementation",
	ArgsUsage: "<token>",
	Flags: []cli.Flag{
		cliUtils.FilterFlag,
		cliUtils.JobsFlag,
		cliUtils.SeedFlag,
		cliUtils.SamplesFlag,
		cliUtils.TimeLimitFlag,
		cliUtils.MaxErrorsFlag,
		cliUtils.WitnessDirFlag,
	},
})

// tokens lists the built-in subjects. The reference token is expected to pass
// the entire catalog; the remaining entries carry deliberate defects and
// exist to demonstrate the detection capabilities of the harness.
var tokens = map[string]func() sub.Token{
	"reference":         sub.NewReferenceToken,
	"unchecked-balance": sub.NewUncheckedBalanceToken,
	"silent-false":      sub.NewSilentFalseToken,
	"sticky-allowance":  sub.NewStickyAllowanceToken,
	"skimming":          sub.NewSkimmingToken,
	"null-sink":         sub.NewNullSinkToken,
}

func doRun(context *cli.Context) error {
	var tokenIdentifier string
	if context.Args().Len() >= 1 {
		tokenIdentifier = context.Args().Get(0)
	}

	factory, ok := tokens[tokenIdentifier]
	if !ok {
		identifiers := maps.Keys(tokens)
		return fmt.Errorf("invalid token identifier, use one of: %v", identifiers)
	}

	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}

	jobCount := cliUtils.JobsFlag.Fetch(context)
	if jobCount <= 0 {
		jobCount = runtime.NumCPU()
	}

	seed := cliUtils.SeedFlag.Fetch(context)
	samples := cliUtils.SamplesFlag.Fetch(context)
	timeLimit := cliUtils.TimeLimitFlag.Fetch(context)
	maxErrors := cliUtils.MaxErrorsFlag.Fetch(context)
	if maxErrors <= 0 {
		maxErrors = math.MaxInt
	}

	properties := spc.FilterProperties(spc.Spec.GetProperties(), filter)
	if len(properties) == 0 {
		return fmt.Errorf("no property matches the given filter")
	}

	issuesCollector := cliUtils.IssuesCollector{}

	printProgress := func(relativeTime time.Duration, rate float64, samples int64) {
		fmt.Printf(
			"[t=%4d:%02d] - Processing ~%s scenarios per second, total %d, found issues %d\n",
			int(relativeTime.Seconds())/60, int(relativeTime.Seconds())%60,
			unitconv.FormatPrefix(rate, unitconv.SI, 0), samples, issuesCollector.NumIssues(),
		)
	}

	evaluate := func(property *rlz.Property) (spc.Result, error) {
		if issuesCollector.NumIssues() >= maxErrors {
			return spc.Result{Property: property, Verdict: spc.Inconclusive}, nil
		}
		budget := spc.Budget{Samples: samples}
		if timeLimit > 0 {
			budget.Deadline = time.Now().Add(timeLimit)
		}
		result, err := spc.EvaluateProperty(property, factory, budget, seed)
		if err != nil {
			return result, err
		}
		if result.Verdict == spc.Fail {
			issuesCollector.AddIssue(result.Witness)
			fmt.Printf("FAIL %s: %s\n", property.Id, result.Witness.Reason)
		}
		return result, nil
	}

	fmt.Printf("Evaluating %d properties on %q with seed %d ...\n", len(properties), tokenIdentifier, seed)

	results, err := spc.ForEachProperty(properties, evaluate, printProgress, jobCount)
	if err != nil {
		return fmt.Errorf("error evaluating properties: %w", err)
	}

	return summarize(context, results, issuesCollector.GetIssues())
}

func summarize(context *cli.Context, results []spc.Result, issues []*spc.Witness) error {
	passed, failed, inconclusive := 0, 0, 0
	for _, result := range results {
		switch result.Verdict {
		case spc.Pass:
			passed++
		case spc.Fail:
			failed++
		case spc.Inconclusive:
			inconclusive++
			if result.TimedOut {
				fmt.Printf("INCONCLUSIVE %s: time limit exceeded after %d samples\n", result.Property.Id, result.Samples)
			} else {
				fmt.Printf("INCONCLUSIVE %s: no satisfying scenario found\n", result.Property.Id)
			}
		}
	}
	fmt.Printf("%d properties passed, %d failed, %d inconclusive\n", passed, failed, inconclusive)

	if len(issues) == 0 && failed == 0 {
		fmt.Printf("All properties hold!\n")
		return nil
	}

	witnessDir := cliUtils.WitnessDirFlag.Fetch(context)
	if witnessDir == "" {
		dir, err := os.MkdirTemp("", "tick_witness_*")
		if err != nil {
			return fmt.Errorf("failed to create output directory for %d witnesses", len(issues))
		}
		witnessDir = dir
	}
	for i, witness := range issues {
		fmt.Printf("----------------------------\n")
		fmt.Printf("%v\n", witness)

		path := filepath.Join(witnessDir, fmt.Sprintf("witness_%06d.json", i))
		if err := spc.ExportWitnessJSON(witness, path); err == nil {
			fmt.Printf("Witness dumped to %s\n", path)
		} else {
			fmt.Printf("failed to dump witness: %v\n", err)
		}
	}

	return fmt.Errorf("failed to verify %d properties", failed)
}
