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
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// Variable is a placeholder for the generation process that will be mapped to
// a specific value during generation. Variables allow properties to relate
// quantities (an account's balance, a call amount, an allowance) without
// restricting degrees of freedom unnecessarily.
type Variable string

func (v Variable) String() string {
	return "$" + string(v)
}

// Assignment holds the mapping from Variables to specific values. It is
// populated during the generation process. Address-valued variables store
// the address in its 256-bit form.
type Assignment map[Variable]U256

// Address is a convenience accessor decoding an address-valued variable.
func (a Assignment) Address(v Variable) Address {
	return NewAddress(a[v])
}

func (a Assignment) Clone() Assignment {
	return maps.Clone(a)
}

func (a Assignment) String() string {
	if a == nil {
		return "{}"
	}

	keys := make([]Variable, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]string, 0, len(a))
	for _, key := range keys {
		entries = append(entries, fmt.Sprintf("%s->%v", string(key), a[key]))
	}

	return "{" + strings.Join(entries, ",") + "}"
}
