// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

// Event is a notification emitted by a successful call.
type Event interface {
	EventName() string
}

type Staked struct {
	Staker      muon.Address `json:"staker"`
	NodeID      uint64       `json:"nodeId"`
	NodeAddress muon.Address `json:"nodeAddress"`
	BackingID   uint64       `json:"backingId"`
	Balance     *uint256.Int `json:"balance"`
}

type StakeRefreshed struct {
	Staker      muon.Address `json:"staker"`
	Balance     *uint256.Int `json:"balance"`
	TotalStaked *uint256.Int `json:"totalStaked"`
}

type ExitRequested struct {
	Staker         muon.Address `json:"staker"`
	WithdrawableAt uint64       `json:"withdrawableAt"`
	PendingRewards *uint256.Int `json:"pendingRewards"`
}

type Withdrawn struct {
	Staker    muon.Address `json:"staker"`
	BackingID uint64       `json:"backingId"`
}

type RewardClaimed struct {
	Staker muon.Address `json:"staker"`
	ReqID  muon.Bytes32 `json:"reqId"`
	Amount *uint256.Int `json:"amount"`
}

type RewardsDistributed struct {
	Amount       *uint256.Int `json:"amount"`
	RewardRate   *uint256.Int `json:"rewardRate"`
	PeriodFinish uint64       `json:"periodFinish"`
}

type StakeLocked struct {
	Staker muon.Address `json:"staker"`
}

type StakeUnlocked struct {
	Staker muon.Address `json:"staker"`
}

type TierMaxStakeUpdated struct {
	Tier   uint8        `json:"tier"`
	Amount *uint256.Int `json:"amount"`
}

type ExitPendingPeriodUpdated struct {
	Period uint64 `json:"period"`
}

type MinStakeAmountPerNodeUpdated struct {
	Amount *uint256.Int `json:"amount"`
}

type MuonAppIDUpdated struct {
	AppID *uint256.Int `json:"appId"`
}

type MuonPublicKeyUpdated struct {
	PublicKey tss.PublicKey `json:"publicKey"`
}

type StakingTokenUpdated struct {
	Token      muon.Address `json:"token"`
	Multiplier *uint256.Int `json:"multiplier"`
}

type RoleGranted struct {
	Role    access.Role  `json:"role"`
	Account muon.Address `json:"account"`
	Sender  muon.Address `json:"sender"`
}

type RoleRevoked struct {
	Role    access.Role  `json:"role"`
	Account muon.Address `json:"account"`
	Sender  muon.Address `json:"sender"`
}

func (Staked) EventName() string                       { return "Staked" }
func (StakeRefreshed) EventName() string               { return "StakeRefreshed" }
func (ExitRequested) EventName() string                { return "ExitRequested" }
func (Withdrawn) EventName() string                    { return "Withdrawn" }
func (RewardClaimed) EventName() string                { return "RewardClaimed" }
func (RewardsDistributed) EventName() string           { return "RewardsDistributed" }
func (StakeLocked) EventName() string                  { return "StakeLocked" }
func (StakeUnlocked) EventName() string                { return "StakeUnlocked" }
func (TierMaxStakeUpdated) EventName() string          { return "TierMaxStakeUpdated" }
func (ExitPendingPeriodUpdated) EventName() string     { return "ExitPendingPeriodUpdated" }
func (MinStakeAmountPerNodeUpdated) EventName() string { return "MinStakeAmountPerNodeUpdated" }
func (MuonAppIDUpdated) EventName() string             { return "MuonAppIdUpdated" }
func (MuonPublicKeyUpdated) EventName() string         { return "MuonPublicKeyUpdated" }
func (StakingTokenUpdated) EventName() string          { return "StakingTokenUpdated" }
func (RoleGranted) EventName() string                  { return "RoleGranted" }
func (RoleRevoked) EventName() string                  { return "RoleRevoked" }
