// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/bonded"
	"github.com/siftal/muon-contracts/builtin/nodemanager"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/staking"
	"github.com/siftal/muon-contracts/builtin/token"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
	"github.com/siftal/muon-contracts/tss"
)

// Storage addresses of the contracts hosted by the ledger.
var (
	StakingAddress     = muon.BytesToAddress([]byte("MuonNodeStaking"))
	NodeManagerAddress = muon.BytesToAddress([]byte("MuonNodeManager"))
	BondedAddress      = muon.BytesToAddress([]byte("BondedToken"))
	TokenAddress       = muon.BytesToAddress([]byte("TokenBook"))
)

// Env is what a single call sees: the contracts bound to one state and the call time.
type Env struct {
	Now uint64

	Staking *staking.Staking
	Nodes   *nodemanager.NodeManager
	Bonded  *bonded.Bonded
	Token   *token.Token
}

func newEnv(st *state.State, rewardToken muon.Address, now uint64) *Env {
	stakingCtx := solidity.NewContext(StakingAddress, st)
	roles := access.New(stakingCtx)
	book := token.New(solidity.NewContext(TokenAddress, st))
	nodes := nodemanager.New(solidity.NewContext(NodeManagerAddress, st), roles)
	bonds := bonded.New(solidity.NewContext(BondedAddress, st), book)

	return &Env{
		Now:     now,
		Staking: staking.New(stakingCtx, roles, nodes, bonds, book.Asset(rewardToken), tss.Verifier{}),
		Nodes:   nodes,
		Bonded:  bonds,
		Token:   book,
	}
}
