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
	"regexp"
	"strings"

	. "github.com/Fantom-foundation/Tick/ct/common"
	"github.com/Fantom-foundation/Tick/ct/gen"
	. "github.com/Fantom-foundation/Tick/ct/rlz"
	"github.com/Fantom-foundation/Tick/ct/st"
	"github.com/Fantom-foundation/Tick/ct/sub"
)

// Specification provides access to the property catalog.
type Specification interface {
	// GetProperties lists all properties of the catalog.
	GetProperties() []*Property

	// GetProperty looks up a single property by its stable ID.
	GetProperty(id string) *Property
}

var Spec = func() Specification {
	return newSpecification(getAllProperties()...)
}()

type specification struct {
	properties []*Property
	index      map[string]*Property
}

func newSpecification(properties ...*Property) Specification {
	index := make(map[string]*Property, len(properties))
	for _, property := range properties {
		if _, present := index[property.Id]; present {
			panic(fmt.Sprintf("duplicate property ID %s", property.Id))
		}
		index[property.Id] = property
	}
	return &specification{properties: properties, index: index}
}

func (s *specification) GetProperties() []*Property {
	return s.properties
}

func (s *specification) GetProperty(id string) *Property {
	return s.index[id]
}

// FilterProperties keeps the properties whose ID or name matches the filter.
func FilterProperties(properties []*Property, filter *regexp.Regexp) []*Property {
	if filter == nil {
		return properties
	}
	res := make([]*Property, 0, len(properties))
	for _, property := range properties {
		if filter.MatchString(property.Id) || filter.MatchString(property.Name) {
			res = append(res, property)
		}
	}
	return res
}

////////////////////////////////////////////////////////////
// Scenario variables

const (
	varSender    = gen.Variable("sender")
	varRecipient = gen.Variable("recipient")
	varSpender   = gen.Variable("spender")
	varAccount   = gen.Variable("account")
	varOther     = gen.Variable("other")

	varAmount           = gen.Variable("amount")
	varBalance          = gen.Variable("balance")
	varRecipientBalance = gen.Variable("recipientBalance")
	varOtherBalance     = gen.Variable("otherBalance")
	varAllowance        = gen.Variable("allowance")
)

////////////////////////////////////////////////////////////
// Postcondition helpers

// expectSuccess requires the call to have completed and returned true.
func expectSuccess(ctx *Context) error {
	if ctx.Receipt.Reverted {
		return fmt.Errorf("expected %v to complete, but it reverted", ctx.Call)
	}
	if !ctx.Receipt.HasResult {
		return fmt.Errorf("expected %v to produce a boolean result", ctx.Call)
	}
	if !ctx.Receipt.Result {
		return fmt.Errorf("expected %v to return true, but it returned false", ctx.Call)
	}
	return nil
}

// expectRevert requires the call to have reverted without any state change.
// A completed call returning false is called out as the prohibited silent
// failure signal.
func expectRevert(ctx *Context) error {
	if ctx.Receipt.CompletedFalse() {
		return fmt.Errorf("expected %v to revert, but it completed returning false", ctx.Call)
	}
	if !ctx.Receipt.Reverted {
		return fmt.Errorf("expected %v to revert, but it completed", ctx.Call)
	}
	return expectSameState(ctx.Pre, ctx.Post)
}

// expectTrueUnlessReverted flags the silent-failure outcome: a mutating call
// that does not revert must return true.
func expectTrueUnlessReverted(ctx *Context) error {
	if ctx.Receipt.Reverted {
		return nil
	}
	if !ctx.Receipt.HasResult || !ctx.Receipt.Result {
		return fmt.Errorf("%v completed without returning true", ctx.Call)
	}
	return nil
}

func expectSameState(expected, got *st.State) error {
	return expectState(expected, got)
}

// expectState compares an expected post-state against the observed one and
// reports all differences.
func expectState(expected, got *st.State) error {
	if got.Eq(expected) {
		return nil
	}
	diff := got.Diff(expected)
	return fmt.Errorf("unexpected state:\n\t%s", strings.Join(diff, "\n\t"))
}

// expectValue requires a read operation to have produced the given amount.
func expectValue(ctx *Context, want U256) error {
	if ctx.Receipt.Reverted {
		return fmt.Errorf("expected %v to complete, but it reverted", ctx.Call)
	}
	if !ctx.Receipt.HasValue {
		return fmt.Errorf("expected %v to produce an amount", ctx.Call)
	}
	if ctx.Receipt.Value.Ne(want) {
		return fmt.Errorf("%v returned %v, want %v", ctx.Call, ctx.Receipt.Value, want)
	}
	return nil
}

////////////////////////////////////////////////////////////
// The catalog

func getAllProperties() []*Property {
	properties := []*Property{}
	properties = append(properties, getReadOnlyProperties()...)
	properties = append(properties, getTransferProperties()...)
	properties = append(properties, getTransferFromProperties()...)
	properties = append(properties, getApproveProperties()...)
	return properties
}

func getReadOnlyProperties() []*Property {
	return []*Property{
		{
			Id:        "ERC20-STDPROP-01",
			Name:      "totalSupplyIsPure",
			Condition: And(),
			Call:      CallSpec{Op: sub.TotalSupply, Mode: sub.RawCall, Caller: varAccount},
			Check: func(ctx *Context) error {
				if err := expectValue(ctx, ctx.Pre.TotalSupply); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:        "ERC20-STDPROP-02",
			Name:      "balanceOfIsPure",
			Condition: And(),
			Call:      CallSpec{Op: sub.BalanceOf, Mode: sub.RawCall, Caller: varOther, Owner: varAccount},
			Check: func(ctx *Context) error {
				if err := expectValue(ctx, ctx.Pre.GetBalance(ctx.Call.Owner)); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:        "ERC20-STDPROP-03",
			Name:      "balanceOfNullIsZero",
			Condition: IsNull(varAccount),
			Call:      CallSpec{Op: sub.BalanceOf, Mode: sub.RawCall, Caller: varOther, Owner: varAccount},
			Check: func(ctx *Context) error {
				if err := expectValue(ctx, NewU256(0)); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:        "ERC20-STDPROP-04",
			Name:      "allowanceIsPure",
			Condition: And(),
			Call:      CallSpec{Op: sub.Allowance, Mode: sub.RawCall, Caller: varOther, Owner: varAccount, Spender: varSpender},
			Check: func(ctx *Context) error {
				if err := expectValue(ctx, ctx.Pre.GetAllowance(ctx.Call.Owner, ctx.Call.Spender)); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-05",
			Name: "balanceIsBoundedBySupply",
			Condition: And(
				IsNotNull(varAccount),
				BalanceIs(varAccount, varBalance),
				BoundedSupply(),
			),
			Call: CallSpec{Op: sub.BalanceOf, Mode: sub.TypedCall, Caller: varOther, Owner: varAccount},
			Check: func(ctx *Context) error {
				balance := ctx.Post.GetBalance(ctx.Call.Owner)
				if balance.Gt(ctx.Post.TotalSupply) {
					return fmt.Errorf("balance %v of %v exceeds total supply %v", balance, ctx.Call.Owner, ctx.Post.TotalSupply)
				}
				return nil
			},
		},

		{
			Id:        "ERC20-STDPROP-06",
			Name:      "supplyEqualsSumOfBalances",
			Condition: And(),
			Call:      CallSpec{Op: sub.TotalSupply, Mode: sub.TypedCall, Caller: varAccount},
			Check: func(ctx *Context) error {
				sum := ctx.Post.SumOfBalances()
				if ctx.Post.TotalSupply.Ne(sum) {
					return fmt.Errorf("total supply %v does not match sum of balances %v", ctx.Post.TotalSupply, sum)
				}
				return nil
			},
		},
	}
}

func getTransferProperties() []*Property {
	return []*Property{
		{
			Id:   "ERC20-STDPROP-07",
			Name: "transferUpdatesBalances",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				ValueLe(varAmount, varBalance),
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.TypedCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				expected := ctx.Pre.Clone()
				expected.SetBalance(ctx.Call.Caller, ctx.Pre.GetBalance(ctx.Call.Caller).Sub(ctx.Call.Amount))
				expected.SetBalance(ctx.Call.To, ctx.Pre.GetBalance(ctx.Call.To).Add(ctx.Call.Amount))
				return expectState(expected, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-08",
			Name: "transferLeavesOthersUntouched",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				IsNotNull(varOther),
				Distinct(varSender, varRecipient, varOther),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				BalanceIs(varOther, varOtherBalance),
				ValueLe(varAmount, varBalance),
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.TypedCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				other := ctx.Assignment.Address(varOther)
				if ctx.Post.GetBalance(other).Ne(ctx.Pre.GetBalance(other)) {
					return fmt.Errorf("balance of unrelated account %v changed from %v to %v",
						other, ctx.Pre.GetBalance(other), ctx.Post.GetBalance(other))
				}
				if ctx.Post.TotalSupply.Ne(ctx.Pre.TotalSupply) {
					return fmt.Errorf("total supply changed from %v to %v", ctx.Pre.TotalSupply, ctx.Post.TotalSupply)
				}
				return nil
			},
		},

		{
			Id:   "ERC20-STDPROP-09",
			Name: "selfTransferKeepsState",
			Condition: And(
				IsNotNull(varSender),
				SameAddress(varSender, varRecipient),
				BalanceIs(varSender, varBalance),
				ValueLe(varAmount, varBalance),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.TypedCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-10",
			Name: "transferNeverReturnsFalse",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: expectTrueUnlessReverted,
		},

		{
			Id:   "ERC20-STDPROP-11",
			Name: "zeroTransferIsNeutral",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				ValueEq(varAmount, NewU256(0)),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.TypedCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-12",
			Name: "transferToNullReverts",
			Condition: And(
				IsNotNull(varSender),
				IsNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-13",
			Name: "transferFromNullCallerReverts",
			Condition: And(
				IsNull(varSender),
				IsNotNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-14",
			Name: "transferWithInsufficientBalanceReverts",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				BalanceIs(varSender, varBalance),
				ValueLt(varBalance, varAmount),
			),
			Call:  CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-15",
			Name: "transferWithReceiverOverflowReverts",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				ValueLe(varAmount, varBalance),
				SumOverflows(varRecipientBalance, varAmount),
			),
			Call:  CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-16",
			Name: "revertedTransferHasNoEffect",
			Condition: And(
				IsNotNull(varSender),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.RawCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if !ctx.Receipt.Reverted {
					return nil
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-17",
			Name: "transferOfEntireBalanceEmptiesSender",
			Condition: And(
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				SameValue(varAmount, varBalance),
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.Transfer, Mode: sub.TypedCall, Caller: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				if remaining := ctx.Post.GetBalance(ctx.Call.Caller); !remaining.IsZero() {
					return fmt.Errorf("sender retains %v after transferring the entire balance", remaining)
				}
				want := ctx.Pre.GetBalance(ctx.Call.To).Add(ctx.Call.Amount)
				if got := ctx.Post.GetBalance(ctx.Call.To); got.Ne(want) {
					return fmt.Errorf("recipient balance is %v, want %v", got, want)
				}
				return nil
			},
		},
	}
}

func getTransferFromProperties() []*Property {
	noSentinel := ValueAtMost(varAllowance, MaxU256().Sub(NewU256(1)))
	return []*Property{
		{
			Id:   "ERC20-STDPROP-18",
			Name: "transferFromUpdatesBalancesAndAllowance",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				ValueLe(varAmount, varBalance),
				ValueLe(varAmount, varAllowance),
				noSentinel,
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				expected := ctx.Pre.Clone()
				expected.SetBalance(ctx.Call.From, ctx.Pre.GetBalance(ctx.Call.From).Sub(ctx.Call.Amount))
				expected.SetBalance(ctx.Call.To, ctx.Pre.GetBalance(ctx.Call.To).Add(ctx.Call.Amount))
				expected.SetAllowance(ctx.Call.From, ctx.Call.Caller,
					ctx.Pre.GetAllowance(ctx.Call.From, ctx.Call.Caller).Sub(ctx.Call.Amount))
				return expectState(expected, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-19",
			Name: "transferFromLeavesOthersUntouched",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				IsNotNull(varOther),
				Distinct(varSender, varRecipient, varOther),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				BalanceIs(varOther, varOtherBalance),
				ValueLe(varAmount, varBalance),
				ValueLe(varAmount, varAllowance),
				noSentinel,
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				other := ctx.Assignment.Address(varOther)
				if ctx.Post.GetBalance(other).Ne(ctx.Pre.GetBalance(other)) {
					return fmt.Errorf("balance of unrelated account %v changed from %v to %v",
						other, ctx.Pre.GetBalance(other), ctx.Post.GetBalance(other))
				}
				if got := ctx.Post.GetAllowance(other, ctx.Call.Caller); got.Ne(ctx.Pre.GetAllowance(other, ctx.Call.Caller)) {
					return fmt.Errorf("allowance of unrelated owner %v changed to %v", other, got)
				}
				if ctx.Post.TotalSupply.Ne(ctx.Pre.TotalSupply) {
					return fmt.Errorf("total supply changed from %v to %v", ctx.Pre.TotalSupply, ctx.Post.TotalSupply)
				}
				return nil
			},
		},

		{
			Id:   "ERC20-STDPROP-20",
			Name: "selfTransferFromKeepsBalances",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				SameAddress(varSender, varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				ValueLe(varAmount, varBalance),
				ValueLe(varAmount, varAllowance),
				noSentinel,
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				expected := ctx.Pre.Clone()
				expected.SetAllowance(ctx.Call.From, ctx.Call.Caller,
					ctx.Pre.GetAllowance(ctx.Call.From, ctx.Call.Caller).Sub(ctx.Call.Amount))
				return expectState(expected, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-21",
			Name: "zeroTransferFromIsNeutral",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				ValueEq(varAmount, NewU256(0)),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-22",
			Name: "transferFromNeverReturnsFalse",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectTrueUnlessReverted,
		},

		{
			Id:   "ERC20-STDPROP-23",
			Name: "transferFromToNullReverts",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-24",
			Name: "transferFromNullSourceReverts",
			Condition: And(
				IsNotNull(varSpender),
				IsNull(varSender),
				IsNotNull(varRecipient),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-25",
			Name: "transferFromWithInsufficientBalanceReverts",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				ValueLt(varBalance, varAmount),
				ValueLe(varAmount, varAllowance),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-26",
			Name: "transferFromWithInsufficientAllowanceReverts",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				ValueLt(varAllowance, varAmount),
				ValueLe(varAmount, varBalance),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-27",
			Name: "transferFromWithReceiverOverflowReverts",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				ValueLe(varAmount, varBalance),
				ValueLe(varAmount, varAllowance),
				SumOverflows(varRecipientBalance, varAmount),
			),
			Call:  CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-28",
			Name: "revertedTransferFromHasNoEffect",
			Condition: And(
				IsNotNull(varSpender),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.RawCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if !ctx.Receipt.Reverted {
					return nil
				}
				return expectSameState(ctx.Pre, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-29",
			Name: "unlimitedAllowanceIsNotConsumed",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				ValueEq(varAllowance, MaxU256()),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				ValueLe(varAmount, varBalance),
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				if got := ctx.Post.GetAllowance(ctx.Call.From, ctx.Call.Caller); got.Ne(MaxU256()) {
					return fmt.Errorf("unlimited allowance was consumed, now %v", got)
				}
				expected := ctx.Pre.Clone()
				expected.SetBalance(ctx.Call.From, ctx.Pre.GetBalance(ctx.Call.From).Sub(ctx.Call.Amount))
				expected.SetBalance(ctx.Call.To, ctx.Pre.GetBalance(ctx.Call.To).Add(ctx.Call.Amount))
				return expectState(expected, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-30",
			Name: "transferFromConsumesExactAllowance",
			Condition: And(
				IsNotNull(varSpender),
				IsNotNull(varSender),
				IsNotNull(varRecipient),
				Distinct(varSender, varRecipient),
				AllowanceIs(varSender, varSpender, varAllowance),
				BalanceIs(varSender, varBalance),
				BalanceIs(varRecipient, varRecipientBalance),
				SameValue(varAmount, varAllowance),
				noSentinel,
				ValueLe(varAmount, varBalance),
				SumFits(varRecipientBalance, varAmount),
			),
			Call: CallSpec{Op: sub.TransferFrom, Mode: sub.TypedCall, Caller: varSpender, From: varSender, To: varRecipient, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				if got := ctx.Post.GetAllowance(ctx.Call.From, ctx.Call.Caller); !got.IsZero() {
					return fmt.Errorf("allowance not fully consumed, %v remains", got)
				}
				return nil
			},
		},
	}
}

func getApproveProperties() []*Property {
	return []*Property{
		{
			Id:   "ERC20-STDPROP-31",
			Name: "approveSetsAllowance",
			Condition: And(
				IsNotNull(varAccount),
				IsNotNull(varSpender),
			),
			Call: CallSpec{Op: sub.Approve, Mode: sub.TypedCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				expected := ctx.Pre.Clone()
				expected.SetAllowance(ctx.Call.Caller, ctx.Call.Spender, ctx.Call.Amount)
				return expectState(expected, ctx.Post)
			},
		},

		{
			Id:   "ERC20-STDPROP-32",
			Name: "approveOverwritesAllowance",
			Condition: And(
				IsNotNull(varAccount),
				IsNotNull(varSpender),
				AllowanceIs(varAccount, varSpender, varAllowance),
			),
			Call: CallSpec{Op: sub.Approve, Mode: sub.TypedCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				if got := ctx.Post.GetAllowance(ctx.Call.Caller, ctx.Call.Spender); got.Ne(ctx.Call.Amount) {
					return fmt.Errorf("allowance is %v after approve(%v), previous value %v was not overwritten",
						got, ctx.Call.Amount, ctx.Pre.GetAllowance(ctx.Call.Caller, ctx.Call.Spender))
				}
				return nil
			},
		},

		{
			Id:   "ERC20-STDPROP-33",
			Name: "approveNeverReturnsFalse",
			Condition: And(
				IsNotNull(varAccount),
			),
			Call:  CallSpec{Op: sub.Approve, Mode: sub.RawCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: expectTrueUnlessReverted,
		},

		{
			Id:   "ERC20-STDPROP-34",
			Name: "approveNullSpenderReverts",
			Condition: And(
				IsNotNull(varAccount),
				IsNull(varSpender),
			),
			Call:  CallSpec{Op: sub.Approve, Mode: sub.RawCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-35",
			Name: "approveFromNullCallerReverts",
			Condition: And(
				IsNull(varAccount),
				IsNotNull(varSpender),
			),
			Call:  CallSpec{Op: sub.Approve, Mode: sub.RawCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: expectRevert,
		},

		{
			Id:   "ERC20-STDPROP-36",
			Name: "selfApproveSetsAllowance",
			Condition: And(
				IsNotNull(varAccount),
				SameAddress(varAccount, varSpender),
			),
			Call: CallSpec{Op: sub.Approve, Mode: sub.TypedCall, Caller: varAccount, Spender: varSpender, Amount: varAmount},
			Check: func(ctx *Context) error {
				if err := expectSuccess(ctx); err != nil {
					return err
				}
				if got := ctx.Post.GetAllowance(ctx.Call.Caller, ctx.Call.Caller); got.Ne(ctx.Call.Amount) {
					return fmt.Errorf("self-approval set allowance to %v, want %v", got, ctx.Call.Amount)
				}
				return nil
			},
		},
	}
}
