// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

var (
	slotExitPendingPeriod = muon.BytesToBytes32([]byte("exit-pending-period"))
	slotMinStake          = muon.BytesToBytes32([]byte("min-stake-amount-per-node"))
	slotAppID             = muon.BytesToBytes32([]byte("muon-app-id"))
	slotPublicKey         = muon.BytesToBytes32([]byte("muon-public-key"))
	slotTierCaps          = muon.BytesToBytes32([]byte("tiers-max-stake-amount"))
	slotSchemaVersion     = muon.BytesToBytes32([]byte("schema-version"))
)

// params holds the administrative settings.
type params struct {
	exitPendingPeriod *solidity.Uint256
	minStake          *solidity.Uint256
	appID             *solidity.Uint256
	publicKey         *solidity.Value[tss.PublicKey]
	tierCaps          *solidity.Mapping[solidity.Index, *uint256.Int]
	schemaVersion     *solidity.Uint256
}

func newParams(sctx *solidity.Context) *params {
	return &params{
		exitPendingPeriod: solidity.NewUint256(sctx, slotExitPendingPeriod),
		minStake:          solidity.NewUint256(sctx, slotMinStake),
		appID:             solidity.NewUint256(sctx, slotAppID),
		publicKey:         solidity.NewValue[tss.PublicKey](sctx, slotPublicKey),
		tierCaps:          solidity.NewMapping[solidity.Index, *uint256.Int](sctx, slotTierCaps),
		schemaVersion:     solidity.NewUint256(sctx, slotSchemaVersion),
	}
}

func (p *params) tierCap(tier uint8) (*uint256.Int, error) {
	return p.tierCaps.Get(solidity.Index(tier))
}
