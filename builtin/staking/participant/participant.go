// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/fixedpoint"
)

// Status is the exit lifecycle position of a participant.
type Status uint8

const (
	StatusNone         Status = iota // no stake
	StatusActive                     // earning rewards
	StatusPendingExit                // exit requested, cooling down
	StatusWithdrawable               // cooldown elapsed
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPendingExit:
		return "pending-exit"
	case StatusWithdrawable:
		return "withdrawable"
	default:
		return "none"
	}
}

// Participant is the staking record of a staker.
type Participant struct {
	NodeID             uint64
	BackingID          uint64
	Balance            *uint256.Int
	PaidRewardPerToken *uint256.Int
	PaidReward         *uint256.Int
	PendingRewards     *uint256.Int
	ExitRequestedAt    uint64
	WithdrawableAt     uint64
	Locked             bool
}

// normalize replaces absent amounts with zero.
func (p *Participant) normalize() *Participant {
	for _, f := range []**uint256.Int{&p.Balance, &p.PaidRewardPerToken, &p.PaidReward, &p.PendingRewards} {
		if *f == nil {
			*f = fixedpoint.Zero()
		}
	}
	return p
}

// Clone returns a deep copy.
func (p *Participant) Clone() *Participant {
	cp := *p
	cp.Balance = p.Balance.Clone()
	cp.PaidRewardPerToken = p.PaidRewardPerToken.Clone()
	cp.PaidReward = p.PaidReward.Clone()
	cp.PendingRewards = p.PendingRewards.Clone()
	return &cp
}

// IsEmpty returns whether the record holds nothing at all.
func (p *Participant) IsEmpty() bool {
	return p.NodeID == 0 && p.PendingRewards.IsZero() && p.PaidReward.IsZero()
}

// IsStaked returns whether the staker runs a node through this record.
func (p *Participant) IsStaked() bool {
	return p.NodeID != 0
}

// CanClaim returns whether the record may redeem rewards.
func (p *Participant) CanClaim() bool {
	return p.NodeID != 0 || !p.PendingRewards.IsZero()
}

// Exited returns whether accrual is frozen.
func (p *Participant) Exited() bool {
	return p.ExitRequestedAt != 0
}

// Status derives the lifecycle state at now.
func (p *Participant) Status(now uint64) Status {
	switch {
	case p.NodeID == 0:
		return StatusNone
	case p.ExitRequestedAt == 0:
		return StatusActive
	case now >= p.WithdrawableAt:
		return StatusWithdrawable
	default:
		return StatusPendingExit
	}
}
