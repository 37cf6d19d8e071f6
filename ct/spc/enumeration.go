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
	"sync"
	"sync/atomic"
	"time"

	"github.com/Fantom-foundation/Tick/ct/rlz"
)

// ForEachProperty evaluates the given properties in parallel and returns one
// result per property, in catalog order. The evaluation of a single property
// is sequential; parallelism is across properties, which keeps every property
// deterministic for a fixed seed regardless of the job count.
//
// A goroutine periodically reports progress to printProgress: the elapsed
// time, the sample throughput since the last report, and the total number of
// executed samples. To avoid dead-locks, the progress consumer is started
// before the producing workers.
func ForEachProperty(
	properties []*rlz.Property,
	evaluate func(property *rlz.Property) (Result, error),
	printProgress func(relativeTime time.Duration, rate float64, samples int64),
	numJobs int,
) ([]Result, error) {
	if numJobs < 1 {
		numJobs = 1
	}

	var sampleCounter atomic.Int64

	done := make(chan bool)
	printerDone := make(chan bool)
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastSampleCounter := int64(0)

		report := func(now time.Time) {
			cur := sampleCounter.Load()

			diffCounter := cur - lastSampleCounter
			diffTime := now.Sub(lastTime)

			lastTime = now
			lastSampleCounter = cur

			rate := float64(diffCounter) / diffTime.Seconds()
			printProgress(now.Sub(startTime), rate, cur)
		}

		for {
			select {
			case <-done:
				report(time.Now())
				return
			case now := <-ticker.C:
				report(now)
			}
		}
	}()

	results := make([]Result, len(properties))

	indexChannel := make(chan int, len(properties))
	var workersWaitGroup sync.WaitGroup
	workersWaitGroup.Add(numJobs)

	var errorMutex sync.Mutex
	var returnError error
	var abort atomic.Bool

	for i := 0; i < numJobs; i++ {
		go func() {
			defer workersWaitGroup.Done()
			for index := range indexChannel {
				if abort.Load() {
					continue // drain the channel
				}
				result, err := evaluate(properties[index])
				if err != nil {
					abort.Store(true)
					errorMutex.Lock()
					if returnError == nil {
						returnError = err
					}
					errorMutex.Unlock()
					continue
				}
				results[index] = result
				sampleCounter.Add(int64(result.Samples + result.Unsatisfiable))
			}
		}()
	}

	for index := range properties {
		indexChannel <- index
	}
	close(indexChannel)
	workersWaitGroup.Wait()

	close(done)   // < signals progress printer to stop
	<-printerDone // < blocks until the final report is out

	return results, returnError
}
