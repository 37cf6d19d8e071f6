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
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	geth "github.com/ethereum/go-ethereum/common"

	. "github.com/Fantom-foundation/Tick/ct/common"
)

// tokenABIJson covers the standard ERC-20 surface plus the harness-only mint
// primitive.
const tokenABIJson = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"transferFrom","type":"function","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"mint","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"totalSupply","type":"function","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"name":"balanceOf","type":"function","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"name":"allowance","type":"function","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

var tokenABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(tokenABIJson))
	if err != nil {
		panic(fmt.Sprintf("invalid token ABI: %v", err))
	}
	return parsed
}()

func toGethAddress(a Address) geth.Address {
	return geth.BytesToAddress(a[:])
}

func fromGethAddress(a geth.Address) Address {
	var res Address
	copy(res[:], a[:])
	return res
}

// EncodeCall packs a call into selector-prefixed calldata for the raw calling
// convention.
func EncodeCall(call Call) ([]byte, error) {
	switch call.Op {
	case Transfer:
		return tokenABI.Pack("transfer", toGethAddress(call.To), call.Amount.ToBig())
	case TransferFrom:
		return tokenABI.Pack("transferFrom", toGethAddress(call.From), toGethAddress(call.To), call.Amount.ToBig())
	case Approve:
		return tokenABI.Pack("approve", toGethAddress(call.Spender), call.Amount.ToBig())
	case Mint:
		return tokenABI.Pack("mint", toGethAddress(call.To), call.Amount.ToBig())
	case TotalSupply:
		return tokenABI.Pack("totalSupply")
	case BalanceOf:
		return tokenABI.Pack("balanceOf", toGethAddress(call.Owner))
	case Allowance:
		return tokenABI.Pack("allowance", toGethAddress(call.Owner), toGethAddress(call.Spender))
	default:
		return nil, fmt.Errorf("cannot encode call for operation %v", call.Op)
	}
}

// DecodeReceipt turns the return data of a completed raw call into a Receipt.
func DecodeReceipt(op Op, ret []byte) (Receipt, error) {
	switch op {
	case Transfer, TransferFrom, Approve:
		values, err := tokenABI.Unpack(op.String(), ret)
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to decode %v return data: %w", op, err)
		}
		result, ok := values[0].(bool)
		if !ok {
			return Receipt{}, fmt.Errorf("%v returned a non-boolean payload", op)
		}
		return Receipt{HasResult: true, Result: result}, nil
	case TotalSupply, BalanceOf, Allowance:
		values, err := tokenABI.Unpack(op.String(), ret)
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to decode %v return data: %w", op, err)
		}
		value, err := amountFromUnpacked(values[0])
		if err != nil {
			return Receipt{}, fmt.Errorf("%v: %w", op, err)
		}
		return Receipt{HasValue: true, Value: value}, nil
	case Mint:
		return Receipt{}, nil
	default:
		return Receipt{}, fmt.Errorf("cannot decode receipt for operation %v", op)
	}
}

func amountFromUnpacked(value any) (U256, error) {
	v, ok := value.(*big.Int)
	if !ok {
		return U256{}, fmt.Errorf("expected an uint256 payload, got %T", value)
	}
	return U256FromBig(v), nil
}
