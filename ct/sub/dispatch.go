// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sub

import (
	"fmt"
	"math/big"

	geth "github.com/ethereum/go-ethereum/common"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// WithRawDispatch equips a token with the low-level calling convention:
// selector-prefixed calldata in, ABI-encoded return data out, with reverts
// passing through as ErrReverted. The dispatch goes through the Token
// interface, so wrapped implementations keep their own semantics on the raw
// path as well.
func WithRawDispatch(token Token) Token {
	return &rawToken{token}
}

type rawToken struct {
	Token
}

func (t *rawToken) CallRaw(caller Address, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("calldata too short: %d bytes", len(input))
	}
	method, err := tokenABI.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("unknown selector %x: %w", input[:4], err)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s arguments: %w", method.Name, err)
	}

	switch method.Name {
	case "transfer":
		ok, err := t.Token.Transfer(caller, argAddress(args[0]), argAmount(args[1]))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(ok)
	case "transferFrom":
		ok, err := t.Token.TransferFrom(caller, argAddress(args[0]), argAddress(args[1]), argAmount(args[2]))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(ok)
	case "approve":
		ok, err := t.Token.Approve(caller, argAddress(args[0]), argAmount(args[1]))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(ok)
	case "mint":
		if err := t.Token.Mint(argAddress(args[0]), argAmount(args[1])); err != nil {
			return nil, err
		}
		return nil, nil
	case "totalSupply":
		return method.Outputs.Pack(t.Token.TotalSupply().ToBig())
	case "balanceOf":
		return method.Outputs.Pack(t.Token.BalanceOf(argAddress(args[0])).ToBig())
	case "allowance":
		return method.Outputs.Pack(t.Token.Allowance(argAddress(args[0]), argAddress(args[1])).ToBig())
	default:
		return nil, fmt.Errorf("unsupported method %s", method.Name)
	}
}

func argAddress(value any) Address {
	address, ok := value.(geth.Address)
	if !ok {
		return NullAddress
	}
	return fromGethAddress(address)
}

func argAmount(value any) U256 {
	amount, ok := value.(*big.Int)
	if !ok {
		return NewU256(0)
	}
	return U256FromBig(amount)
}
