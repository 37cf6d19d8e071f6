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
	"bytes"
	"encoding/json"
	"os"
)

// ExportWitnessJSON exports the given witness in json format to the given
// file path. An existing file is overwritten.
func ExportWitnessJSON(witness *Witness, filePath string) error {
	serialized, err := json.MarshalIndent(witness, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, serialized, 0644)
}

// ImportWitnessJSON imports a witness from the given json file.
func ImportWitnessJSON(filePath string) (*Witness, error) {
	serialized, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	witness := &Witness{}
	decoder := json.NewDecoder(bytes.NewReader(serialized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(witness); err != nil {
		return nil, err
	}
	return witness, nil
}
