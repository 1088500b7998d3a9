// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

// Context binds storage primitives to the storage of one builtin contract.
type Context struct {
	address muon.Address
	state   *state.State
}

func NewContext(address muon.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() muon.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
