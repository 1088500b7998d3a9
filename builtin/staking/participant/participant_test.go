// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(muon.BytesToAddress([]byte("Staking")), state.New(db)))
}

func TestStatus(t *testing.T) {
	p := (&Participant{}).normalize()
	assert.Equal(t, StatusNone, p.Status(10))

	p.NodeID = 1
	assert.Equal(t, StatusActive, p.Status(10))

	_, err := RequestExit(p, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingExit, p.Status(16))
	assert.Equal(t, StatusWithdrawable, p.Status(17))
	assert.Equal(t, "withdrawable", p.Status(17).String())

	_, err = RequestExit(p, 20, 7)
	assert.ErrorIs(t, err, ErrAlreadyExited)
}

func TestAdmitAndRelease(t *testing.T) {
	s := newService(t)
	staker := muon.Address{1}

	p, err := s.Admit(staker, 7, uint256.NewInt(5))
	require.NoError(t, err)
	p.NodeID = 1
	require.NoError(t, s.Set(staker, p))

	_, err = s.Admit(staker, 8, uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrAlreadyStaked)
	_, err = s.Admit(muon.Address{2}, 7, uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrBackingInUse)

	p, err = s.GetStaked(staker)
	require.NoError(t, err)
	p.Balance = fixedpoint.Tokens(10)
	p.PendingRewards = uint256.NewInt(42)

	_, err = s.Release(p, 100)
	assert.ErrorIs(t, err, ErrExitNotReached)

	_, err = RequestExit(p, 100, 7)
	require.NoError(t, err)
	_, err = s.Release(p, 106)
	assert.ErrorIs(t, err, ErrExitNotReached)

	require.NoError(t, Lock(p))
	assert.ErrorIs(t, Lock(p), ErrAlreadyLocked)
	_, err = s.Release(p, 107)
	assert.ErrorIs(t, err, ErrLocked)
	require.NoError(t, Unlock(p))
	assert.ErrorIs(t, Unlock(p), ErrNotLocked)

	backing, err := s.Release(p, 107)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), backing)
	assert.True(t, p.Balance.IsZero())
	assert.Equal(t, uint256.NewInt(42), p.PendingRewards)
	assert.True(t, p.CanClaim())
	require.NoError(t, s.Set(staker, p))

	// the backing and the staker are free again
	owner, err := s.BackingOwner(7)
	require.NoError(t, err)
	assert.True(t, owner.IsZero())
	p, err = s.Admit(staker, 7, uint256.NewInt(9))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), p.PendingRewards)
}

func TestLockRequiresExit(t *testing.T) {
	p := (&Participant{NodeID: 1}).normalize()
	assert.ErrorIs(t, Lock(p), ErrLockBeforeExit)
}

func TestSettleAndEarned(t *testing.T) {
	p := (&Participant{NodeID: 1, Balance: fixedpoint.Tokens(2)}).normalize()

	require.NoError(t, Settle(p, uint256.NewInt(100)))
	assert.Equal(t, uint256.NewInt(200), p.PendingRewards)
	assert.Equal(t, uint256.NewInt(100), p.PaidRewardPerToken)

	earned, err := Earned(p, uint256.NewInt(150))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(300), earned)

	// exited records stop accruing
	_, err = RequestExit(p, 1, 1)
	require.NoError(t, err)
	require.NoError(t, Settle(p, uint256.NewInt(1000)))
	assert.Equal(t, uint256.NewInt(200), p.PendingRewards)
	earned, err = Earned(p, uint256.NewInt(5000))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(200), earned)
}

func TestPay(t *testing.T) {
	p := (&Participant{NodeID: 1, Balance: fixedpoint.Tokens(1), PendingRewards: uint256.NewInt(10)}).normalize()

	assert.ErrorIs(t, Pay(p, uint256.NewInt(111), uint256.NewInt(100)), ErrInsufficientEarns)

	require.NoError(t, Pay(p, uint256.NewInt(60), uint256.NewInt(100)))
	assert.Equal(t, uint256.NewInt(60), p.PaidReward)
	assert.True(t, p.PendingRewards.IsZero())
	assert.Equal(t, uint256.NewInt(100), p.PaidRewardPerToken)

	// pending of an exited record is drawn down
	p.PendingRewards = uint256.NewInt(50)
	_, err := RequestExit(p, 1, 1)
	require.NoError(t, err)
	require.NoError(t, Pay(p, uint256.NewInt(20), uint256.NewInt(400)))
	assert.Equal(t, uint256.NewInt(30), p.PendingRewards)
	assert.Equal(t, uint256.NewInt(80), p.PaidReward)
}
