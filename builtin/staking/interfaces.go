// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/staking/gate"
	"github.com/siftal/muon-contracts/muon"
)

// NodeRegistry keeps the nodes run by stakers.
type NodeRegistry interface {
	AddNode(nodeAddress, staker muon.Address, peerID string, active bool, now uint64) (uint64, error)
	Deactivate(id uint64, now uint64) error
	IsActive(id uint64) (bool, error)
	GetTier(id uint64) (uint8, error)
}

// BondedToken is the instrument backing a stake.
type BondedToken interface {
	OwnerOf(id uint64) (muon.Address, error)
	LockedOf(id uint64, tokens []muon.Address) ([]*uint256.Int, error)
	Transfer(id uint64, from, to muon.Address) error
	Lock(id uint64, from muon.Address, tokens []muon.Address, amounts []*uint256.Int) error
	Merge(owner muon.Address, source, target uint64) error
}

// RewardToken is the asset rewards are paid in.
type RewardToken interface {
	BalanceOf(holder muon.Address) (*uint256.Int, error)
	Transfer(from, to muon.Address, amount *uint256.Int) error
}

// Verifier checks reward quote signatures.
type Verifier = gate.Verifier
