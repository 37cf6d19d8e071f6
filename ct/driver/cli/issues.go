// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"sync"

	"github.com/Fantom-foundation/Tick/ct/spc"
)

// IssuesCollector accumulates counterexample witnesses from concurrently
// evaluated properties.
type IssuesCollector struct {
	witnesses []*spc.Witness
	mu        sync.Mutex
}

func (c *IssuesCollector) AddIssue(witness *spc.Witness) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.witnesses = append(c.witnesses, witness)
}

func (c *IssuesCollector) NumIssues() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.witnesses)
}

func (c *IssuesCollector) GetIssues() []*spc.Witness {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.witnesses
}
