// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Add and Sub fail instead of wrapping around.
type Uint256 struct {
	context *Context
	pos     muon.Bytes32
}

func NewUint256(context *Context, slot muon.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(storage.Bytes()), nil
}

// Uint64 reads the value as uint64, for slots holding timestamps or counters.
func (u *Uint256) Uint64() (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, muon.Bytes32(value.Bytes32()))
}

func (u *Uint256) SetUint64(value uint64) {
	u.Set(uint256.NewInt(value))
}

func (u *Uint256) Add(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	sum, err := fixedpoint.Add(storage, value)
	if err != nil {
		return err
	}
	u.Set(sum)
	return nil
}

func (u *Uint256) Sub(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	diff, err := fixedpoint.Sub(storage, value)
	if err != nil {
		return err
	}
	u.Set(diff)
	return nil
}
