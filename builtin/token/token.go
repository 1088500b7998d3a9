// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token keeps balances of the fungible assets used as stake and as
// reward. It only carries value: there are no allowances, hooks or decimals.
package token

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

var (
	ErrInsufficientBalance = reverts.New(reverts.Validation, "ERC20: transfer amount exceeds balance")
	ErrZeroAddress         = reverts.New(reverts.Validation, "ERC20: zero address")
)

var (
	slotBalances = muon.BytesToBytes32([]byte("balances"))
	slotSupplies = muon.BytesToBytes32([]byte("total-supply"))
)

func balanceKey(asset, holder muon.Address) muon.Bytes32 {
	return muon.Blake2b(asset.Bytes(), holder.Bytes())
}

// Token is the multi asset balance book.
type Token struct {
	balances *solidity.Mapping[muon.Bytes32, *uint256.Int]
	supplies *solidity.Mapping[muon.Address, *uint256.Int]
}

func New(sctx *solidity.Context) *Token {
	return &Token{
		balances: solidity.NewMapping[muon.Bytes32, *uint256.Int](sctx, slotBalances),
		supplies: solidity.NewMapping[muon.Address, *uint256.Int](sctx, slotSupplies),
	}
}

// BalanceOf returns the balance of holder in asset.
func (t *Token) BalanceOf(asset, holder muon.Address) (*uint256.Int, error) {
	return t.balances.Get(balanceKey(asset, holder))
}

// TotalSupply returns the minted amount of asset.
func (t *Token) TotalSupply(asset muon.Address) (*uint256.Int, error) {
	return t.supplies.Get(asset)
}

// Mint creates amount of asset for to.
func (t *Token) Mint(asset, to muon.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	supply, err := t.supplies.Get(asset)
	if err != nil {
		return err
	}
	if supply, err = fixedpoint.Add(supply, amount); err != nil {
		return err
	}
	if err := t.supplies.Set(asset, supply); err != nil {
		return err
	}
	return t.add(asset, to, amount)
}

// Transfer moves amount of asset from one holder to another.
func (t *Token) Transfer(asset, from, to muon.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	bal, err := t.BalanceOf(asset, from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance.Wrapf("%s holds %s of %s, needs %s",
			from, fixedpoint.Format(bal), asset, fixedpoint.Format(amount))
	}
	if err := t.balances.Set(balanceKey(asset, from), new(uint256.Int).Sub(bal, amount)); err != nil {
		return err
	}
	return t.add(asset, to, amount)
}

func (t *Token) add(asset, holder muon.Address, amount *uint256.Int) error {
	bal, err := t.BalanceOf(asset, holder)
	if err != nil {
		return err
	}
	if bal, err = fixedpoint.Add(bal, amount); err != nil {
		return err
	}
	return t.balances.Set(balanceKey(asset, holder), bal)
}

// Asset binds the book to a single asset.
func (t *Token) Asset(asset muon.Address) *Asset {
	return &Asset{book: t, address: asset}
}

// Asset is a view of one asset, e.g. the reward token.
type Asset struct {
	book    *Token
	address muon.Address
}

func (a *Asset) Address() muon.Address {
	return a.address
}

func (a *Asset) BalanceOf(holder muon.Address) (*uint256.Int, error) {
	return a.book.BalanceOf(a.address, holder)
}

func (a *Asset) Transfer(from, to muon.Address, amount *uint256.Int) error {
	return a.book.Transfer(a.address, from, to, amount)
}
