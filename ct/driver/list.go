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
	"sort"

	cliUtils "github.com/Fantom-foundation/Tick/ct/driver/cli"
	"github.com/Fantom-foundation/Tick/ct/spc"
	"github.com/urfave/cli/v2"
)

var ListCmd = cli.Command{
	Action: doList,
	Name:   "list",
	Usage:  "List all properties of the catalog",
	Flags: []cli.Flag{
		cliUtils.FilterFlag,
	},
}

func doList(context *cli.Context) error {

	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}

	properties := spc.FilterProperties(spc.Spec.GetProperties(), filter)
	sort.Slice(properties, func(i, j int) bool { return properties[i].Id < properties[j].Id })
	for _, property := range properties {
		fmt.Printf("%s %s\n", property.Id, property.Name)
	}
	return nil
}
