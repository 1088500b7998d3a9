// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

// Amount renders a scaled amount as a decimal number of whole tokens.
type Amount struct {
	decimal.Decimal
}

func amount(x *uint256.Int) Amount {
	return Amount{fixedpoint.ToDecimal(x)}
}

// MarshalJSON writes the amount as a string so no precision is lost.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// Totals is the global reward state.
type Totals struct {
	TotalStaked          Amount `json:"totalStaked"`
	RewardRate           string `json:"rewardRate"` // wei per second
	RewardPerTokenStored string `json:"rewardPerTokenStored"`
	RewardPerToken       string `json:"rewardPerToken"`
	LastUpdateTime       uint64 `json:"lastUpdateTime"`
	PeriodFinish         uint64 `json:"periodFinish"`
	Now                  uint64 `json:"now"`
}

// User is the staking record of a staker with its derived values.
type User struct {
	Address            muon.Address `json:"address"`
	Status             string       `json:"status"`
	NodeID             uint64       `json:"nodeId"`
	BondedTokenID      uint64       `json:"bondedTokenId"`
	Balance            Amount       `json:"balance"`
	Earned             Amount       `json:"earned"`
	PaidReward         Amount       `json:"paidReward"`
	PendingRewards     Amount       `json:"pendingRewards"`
	PaidRewardPerToken string       `json:"paidRewardPerToken"`
	ExitRequestedAt    uint64       `json:"exitRequestedAt"`
	WithdrawableAt     uint64       `json:"withdrawableAt"`
	Locked             bool         `json:"locked"`
}

// Tier is the stake cap of a tier.
type Tier struct {
	Tier     uint8  `json:"tier"`
	MaxStake Amount `json:"maxStake"`
}

// Token is a staking token and its weight.
type Token struct {
	Address    muon.Address `json:"address"`
	Multiplier Amount       `json:"multiplier"`
}
