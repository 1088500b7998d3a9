// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/staking/rewards"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

var (
	ErrNotFound          = reverts.New(reverts.Validation, "Node not found for the staker address.")
	ErrAlreadyStaked     = reverts.New(reverts.Validation, "Already staked.")
	ErrBackingInUse      = reverts.New(reverts.Validation, "Bonded token is already staked.")
	ErrNotActive         = reverts.New(reverts.State, "The node is not active.")
	ErrAlreadyExited     = reverts.New(reverts.State, "Exit has already been requested.")
	ErrExitNotReached    = reverts.New(reverts.State, "The exit time has not been reached yet.")
	ErrLocked            = reverts.New(reverts.State, "Your stake is currently locked and cannot be withdrawn.")
	ErrAlreadyLocked     = reverts.New(reverts.State, "The stake is already locked.")
	ErrNotLocked         = reverts.New(reverts.State, "The stake is not locked.")
	ErrLockBeforeExit    = reverts.New(reverts.State, "The stake can only be locked after an exit request.")
	ErrInsufficientEarns = reverts.New(reverts.Signature, "Amount exceeds the earned reward.")
)

var (
	slotParticipants = muon.BytesToBytes32([]byte("participants"))
	slotBackings     = muon.BytesToBytes32([]byte("staked-backings"))
)

// Service stores participant records and applies their transitions.
type Service struct {
	participants *solidity.Mapping[muon.Address, *Participant]
	backings     *solidity.Mapping[solidity.Index, muon.Address]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		participants: solidity.NewMapping[muon.Address, *Participant](sctx, slotParticipants),
		backings:     solidity.NewMapping[solidity.Index, muon.Address](sctx, slotBackings),
	}
}

// Get returns the record of staker, zeroed when absent.
func (s *Service) Get(staker muon.Address) (*Participant, error) {
	p, err := s.participants.Get(staker)
	if err != nil {
		return nil, err
	}
	return p.normalize(), nil
}

// GetStaked returns the record of a staker running a node.
func (s *Service) GetStaked(staker muon.Address) (*Participant, error) {
	p, err := s.Get(staker)
	if err != nil {
		return nil, err
	}
	if !p.IsStaked() {
		return nil, ErrNotFound.Wrapf("%s", staker)
	}
	return p, nil
}

// BackingOwner returns the staker whose stake is backed by the bonded token.
func (s *Service) BackingOwner(backingID uint64) (muon.Address, error) {
	return s.backings.Get(solidity.Index(backingID))
}

func (s *Service) Set(staker muon.Address, p *Participant) error {
	return s.participants.Set(staker, p)
}

// Settle moves accrual up to rewardPerToken into pending. Exited records do not accrue.
func Settle(p *Participant, rewardPerToken *uint256.Int) error {
	if !p.Exited() {
		pending, err := rewards.Earned(p.Balance, rewardPerToken, p.PaidRewardPerToken, p.PendingRewards)
		if err != nil {
			return err
		}
		p.PendingRewards = pending
	}
	p.PaidRewardPerToken = rewardPerToken.Clone()
	return nil
}

// Earned is the claimable reward at rewardPerToken.
func Earned(p *Participant, rewardPerToken *uint256.Int) (*uint256.Int, error) {
	if p.Exited() || !p.IsStaked() {
		return p.PendingRewards.Clone(), nil
	}
	return rewards.Earned(p.Balance, rewardPerToken, p.PaidRewardPerToken, p.PendingRewards)
}

// Admit reserves the backing for a new stake of staker. The caller assigns
// the node and balance. Pending rewards of an earlier stake are carried over.
func (s *Service) Admit(staker muon.Address, backingID uint64, rewardPerToken *uint256.Int) (*Participant, error) {
	p, err := s.Get(staker)
	if err != nil {
		return nil, err
	}
	if p.IsStaked() {
		return nil, ErrAlreadyStaked.Wrapf("%s runs node %d", staker, p.NodeID)
	}
	owner, err := s.BackingOwner(backingID)
	if err != nil {
		return nil, err
	}
	if !owner.IsZero() {
		return nil, ErrBackingInUse.Wrapf("bonded token %d", backingID)
	}
	if err := s.backings.Set(solidity.Index(backingID), staker); err != nil {
		return nil, err
	}
	p.BackingID = backingID
	p.Balance = fixedpoint.Zero()
	p.PaidRewardPerToken = rewardPerToken.Clone()
	p.ExitRequestedAt = 0
	p.WithdrawableAt = 0
	p.Locked = false
	return p, nil
}

// RequestExit freezes accrual and starts the cooldown. It returns the
// balance that stops earning.
func RequestExit(p *Participant, now, pendingPeriod uint64) (*uint256.Int, error) {
	if p.Exited() {
		return nil, ErrAlreadyExited.Wrapf("at %d", p.ExitRequestedAt)
	}
	p.ExitRequestedAt = now
	p.WithdrawableAt = now + pendingPeriod
	return p.Balance.Clone(), nil
}

// Lock freezes withdrawal of an exiting stake.
func Lock(p *Participant) error {
	if p.Locked {
		return ErrAlreadyLocked
	}
	if !p.Exited() {
		return ErrLockBeforeExit
	}
	p.Locked = true
	return nil
}

// Unlock restores withdrawal.
func Unlock(p *Participant) error {
	if !p.Locked {
		return ErrNotLocked
	}
	p.Locked = false
	return nil
}

// Release clears the stake of a withdrawable record and returns the backing id.
// Paid and pending rewards are kept.
func (s *Service) Release(p *Participant, now uint64) (uint64, error) {
	switch p.Status(now) {
	case StatusActive:
		return 0, ErrExitNotReached.Wrapf("exit not requested")
	case StatusPendingExit:
		return 0, ErrExitNotReached.Wrapf("withdrawable at %d", p.WithdrawableAt)
	}
	if p.Locked {
		return 0, ErrLocked
	}
	backingID := p.BackingID
	s.backings.Delete(solidity.Index(backingID))

	p.NodeID = 0
	p.BackingID = 0
	p.Balance = fixedpoint.Zero()
	p.ExitRequestedAt = 0
	p.WithdrawableAt = 0
	return backingID, nil
}

// Pay books a redeemed reward quoted at rewardPerToken. Accrual up to the
// quote that amount does not claim is forfeited. Frozen pending rewards are
// the exception: they shrink by at most amount, so what a partial claim
// leaves stays redeemable after withdraw.
func Pay(p *Participant, amount, rewardPerToken *uint256.Int) error {
	bound, err := Earned(p, rewardPerToken)
	if err != nil {
		return err
	}
	if amount.Gt(bound) {
		return ErrInsufficientEarns.Wrapf("%s > %s", fixedpoint.Format(amount), fixedpoint.Format(bound))
	}
	paid, err := fixedpoint.Add(p.PaidReward, amount)
	if err != nil {
		return err
	}
	p.PaidReward = paid
	p.PendingRewards = new(uint256.Int).Sub(p.PendingRewards, fixedpoint.Min(amount, p.PendingRewards))
	p.PaidRewardPerToken = rewardPerToken.Clone()
	return nil
}
