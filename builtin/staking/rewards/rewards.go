// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

var (
	ErrZeroRate      = reverts.New(reverts.Validation, "Reward rate is zero.")
	ErrRewardTooHigh = reverts.New(reverts.Validation, "Provided reward too high.")
)

var (
	periodInt = uint256.NewInt(muon.RewardPeriod)

	slotRewardRate   = muon.BytesToBytes32([]byte("reward-rate"))
	slotStored       = muon.BytesToBytes32([]byte("reward-per-token-stored"))
	slotLastUpdate   = muon.BytesToBytes32([]byte("last-update-time"))
	slotPeriodFinish = muon.BytesToBytes32([]byte("period-finish"))
	slotTotalStaked  = muon.BytesToBytes32([]byte("total-staked"))
)

// Snapshot is a read of the global reward state.
type Snapshot struct {
	RewardRate           *uint256.Int
	RewardPerTokenStored *uint256.Int
	LastUpdateTime       uint64
	PeriodFinish         uint64
	TotalStaked          *uint256.Int
}

// Service is the reward-per-token accumulator. Rewards are streamed at a
// constant rate over RewardPeriod and shared pro rata by staked balance.
type Service struct {
	rewardRate   *solidity.Uint256
	stored       *solidity.Uint256
	lastUpdate   *solidity.Uint256
	periodFinish *solidity.Uint256
	totalStaked  *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		rewardRate:   solidity.NewUint256(sctx, slotRewardRate),
		stored:       solidity.NewUint256(sctx, slotStored),
		lastUpdate:   solidity.NewUint256(sctx, slotLastUpdate),
		periodFinish: solidity.NewUint256(sctx, slotPeriodFinish),
		totalStaked:  solidity.NewUint256(sctx, slotTotalStaked),
	}
}

// Snapshot reads all global reward state.
func (s *Service) Snapshot() (*Snapshot, error) {
	rate, err := s.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	stored, err := s.stored.Get()
	if err != nil {
		return nil, err
	}
	last, err := s.lastUpdate.Uint64()
	if err != nil {
		return nil, err
	}
	finish, err := s.periodFinish.Uint64()
	if err != nil {
		return nil, err
	}
	total, err := s.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		RewardRate:           rate,
		RewardPerTokenStored: stored,
		LastUpdateTime:       last,
		PeriodFinish:         finish,
		TotalStaked:          total,
	}, nil
}

// LastTimeRewardApplicable is min(now, periodFinish).
func (snap *Snapshot) LastTimeRewardApplicable(now uint64) uint64 {
	return min(now, snap.PeriodFinish)
}

// RewardPerToken projects the accumulator to now.
func (snap *Snapshot) RewardPerToken(now uint64) (*uint256.Int, error) {
	if snap.TotalStaked.IsZero() {
		return snap.RewardPerTokenStored.Clone(), nil
	}
	applicable := snap.LastTimeRewardApplicable(now)
	if applicable <= snap.LastUpdateTime {
		return snap.RewardPerTokenStored.Clone(), nil
	}
	accrued, err := fixedpoint.Mul(uint256.NewInt(applicable-snap.LastUpdateTime), snap.RewardRate)
	if err != nil {
		return nil, err
	}
	delta, err := fixedpoint.MulDiv(accrued, fixedpoint.Scale, snap.TotalStaked)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Add(snap.RewardPerTokenStored, delta)
}

// RewardPerToken returns the accumulator value at now without writing it.
func (s *Service) RewardPerToken(now uint64) (*uint256.Int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.RewardPerToken(now)
}

// Checkpoint settles the accumulator up to now and returns the stored value.
func (s *Service) Checkpoint(now uint64) (*uint256.Int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	rpt, err := snap.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	s.stored.Set(rpt)
	s.lastUpdate.SetUint64(snap.LastTimeRewardApplicable(now))
	return rpt, nil
}

// Earned is balance*(rewardPerToken-paid)/1e18 + pending.
func Earned(balance, rewardPerToken, paid, pending *uint256.Int) (*uint256.Int, error) {
	if rewardPerToken.Lt(paid) {
		return pending.Clone(), nil
	}
	accrued, err := fixedpoint.MulDiv(balance, new(uint256.Int).Sub(rewardPerToken, paid), fixedpoint.Scale)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Add(accrued, pending)
}

// Distribute starts a new reward period of amount, folding in what is left
// of the running one. available is the reward balance held by the contract.
// The caller checkpoints first.
func (s *Service) Distribute(amount *uint256.Int, available *uint256.Int, now uint64) (*uint256.Int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	total := amount.Clone()
	if now < snap.PeriodFinish {
		leftover, err := fixedpoint.Mul(uint256.NewInt(snap.PeriodFinish-now), snap.RewardRate)
		if err != nil {
			return nil, err
		}
		if total, err = fixedpoint.Add(total, leftover); err != nil {
			return nil, err
		}
	}
	rate := new(uint256.Int).Div(total, periodInt)
	if rate.IsZero() {
		return nil, ErrZeroRate.Wrapf("reward %s over %d seconds", total, muon.RewardPeriod)
	}
	budget, err := fixedpoint.Mul(rate, periodInt)
	if err != nil {
		return nil, err
	}
	if budget.Gt(available) {
		return nil, ErrRewardTooHigh.Wrapf("needs %s, holds %s", fixedpoint.Format(budget), fixedpoint.Format(available))
	}
	s.rewardRate.Set(rate)
	s.lastUpdate.SetUint64(now)
	s.periodFinish.SetUint64(now + muon.RewardPeriod)
	return rate, nil
}

// TotalStaked returns the sum of reward earning balances.
func (s *Service) TotalStaked() (*uint256.Int, error) {
	return s.totalStaked.Get()
}

// AddStake adjusts the total by a balance change. The caller checkpoints first.
func (s *Service) AddStake(amount *uint256.Int) error {
	return s.totalStaked.Add(amount)
}

// SubStake adjusts the total by a balance change. The caller checkpoints first.
func (s *Service) SubStake(amount *uint256.Int) error {
	return s.totalStaked.Sub(amount)
}
