// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/staking/gate"
	"github.com/siftal/muon-contracts/builtin/staking/participant"
	"github.com/siftal/muon-contracts/builtin/staking/rewards"
	"github.com/siftal/muon-contracts/builtin/staking/tokens"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

var logger = log.WithContext("pkg", "staking")

var (
	ErrInsufficientStake = reverts.New(reverts.Validation, "Insufficient amount to run a node.")
	ErrNotBackingOwner   = reverts.New(reverts.Validation, "The staker does not own the bonded token.")
	ErrBackingMismatch   = reverts.New(reverts.Validation, "The bonded token is not the staked one.")
	ErrUnknownTier       = reverts.New(reverts.Validation, "Unknown tier.")
	ErrInvalidPublicKey  = reverts.New(reverts.Validation, "Invalid public key.")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Staking implements the node staking ledger.
type Staking struct {
	address muon.Address

	roles        *access.Control
	params       *params
	tokens       *tokens.Service
	rewards      *rewards.Service
	participants *participant.Service
	gate         *gate.Gate

	nodes       NodeRegistry
	bonded      BondedToken
	rewardToken RewardToken
	verifier    Verifier

	events []Event
}

// New creates the staking contract stored under sctx.
func New(
	sctx *solidity.Context,
	roles *access.Control,
	nodes NodeRegistry,
	bonded BondedToken,
	rewardToken RewardToken,
	verifier Verifier,
) *Staking {
	return &Staking{
		address:      sctx.Address(),
		roles:        roles,
		params:       newParams(sctx),
		tokens:       tokens.New(sctx),
		rewards:      rewards.New(sctx),
		participants: participant.New(sctx),
		gate:         gate.New(sctx),
		nodes:        nodes,
		bonded:       bonded,
		rewardToken:  rewardToken,
		verifier:     verifier,
	}
}

// Address returns the account holding staked bonded tokens and rewards.
func (s *Staking) Address() muon.Address {
	return s.address
}

func (s *Staking) emit(ev Event) {
	s.events = append(s.events, ev)
}

// TakeEvents returns the events emitted so far and clears the buffer.
func (s *Staking) TakeEvents() []Event {
	events := s.events
	s.events = nil
	return events
}

//
// Getters - no state change
//

// RewardPerToken returns the accumulator projected to now.
func (s *Staking) RewardPerToken(now uint64) (*uint256.Int, error) {
	return s.rewards.RewardPerToken(now)
}

// Earned returns the reward claimable by staker at now.
func (s *Staking) Earned(staker muon.Address, now uint64) (*uint256.Int, error) {
	p, err := s.participants.Get(staker)
	if err != nil {
		return nil, err
	}
	rpt, err := s.rewards.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	return participant.Earned(p, rpt)
}

// Users returns the record of staker.
func (s *Staking) Users(staker muon.Address) (*participant.Participant, error) {
	return s.participants.Get(staker)
}

// Status returns the exit lifecycle state of staker at now.
func (s *Staking) Status(staker muon.Address, now uint64) (participant.Status, error) {
	p, err := s.participants.Get(staker)
	if err != nil {
		return participant.StatusNone, err
	}
	return p.Status(now), nil
}

func (s *Staking) TotalStaked() (*uint256.Int, error) {
	return s.rewards.TotalStaked()
}

// RewardState returns the global reward accumulator state.
func (s *Staking) RewardState() (*rewards.Snapshot, error) {
	return s.rewards.Snapshot()
}

func (s *Staking) RewardRate() (*uint256.Int, error) {
	snap, err := s.rewards.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.RewardRate, nil
}

func (s *Staking) PeriodFinish() (uint64, error) {
	snap, err := s.rewards.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.PeriodFinish, nil
}

func (s *Staking) TiersMaxStakeAmount(tier uint8) (*uint256.Int, error) {
	return s.params.tierCap(tier)
}

func (s *Staking) ExitPendingPeriod() (uint64, error) {
	return s.params.exitPendingPeriod.Uint64()
}

func (s *Staking) MinStakeAmountPerNode() (*uint256.Int, error) {
	return s.params.minStake.Get()
}

func (s *Staking) MuonAppID() (*uint256.Int, error) {
	return s.params.appID.Get()
}

func (s *Staking) MuonPublicKey() (tss.PublicKey, error) {
	return s.params.publicKey.Get()
}

// StakingTokens returns the staking token at the 0-based index.
func (s *Staking) StakingTokens(index uint64) (muon.Address, error) {
	return s.tokens.At(index)
}

// IsStakingToken returns the 1-based index of token, zero when not registered.
func (s *Staking) IsStakingToken(token muon.Address) (uint64, error) {
	return s.tokens.IsStakingToken(token)
}

func (s *Staking) StakingTokensMultiplier(token muon.Address) (*uint256.Int, error) {
	return s.tokens.Multiplier(token)
}

func (s *Staking) StakingTokenList() ([]tokens.Token, error) {
	return s.tokens.List()
}

func (s *Staking) IsRequestConsumed(reqID muon.Bytes32) (bool, error) {
	return s.gate.IsConsumed(reqID)
}

// ValueOfBondedToken weighs the tokens locked in a bonded token by their multipliers.
func (s *Staking) ValueOfBondedToken(id uint64) (*uint256.Int, error) {
	return s.tokens.ValueOf(func(tokens []muon.Address) ([]*uint256.Int, error) {
		return s.bonded.LockedOf(id, tokens)
	})
}

func (s *Staking) HasRole(role access.Role, account muon.Address) (bool, error) {
	return s.roles.HasRole(role, account)
}

// SchemaVersion returns the storage layout version.
func (s *Staking) SchemaVersion() (uint64, error) {
	return s.params.schemaVersion.Uint64()
}

// SetSchemaVersion records the storage layout version after a migration.
func (s *Staking) SetSchemaVersion(version uint64) {
	s.params.schemaVersion.SetUint64(version)
}

//
// Setters - state change
//

// clampedValue is min(value of the backing, cap of the node's tier).
func (s *Staking) clampedValue(p *participant.Participant) (*uint256.Int, error) {
	value, err := s.ValueOfBondedToken(p.BackingID)
	if err != nil {
		return nil, err
	}
	tier, err := s.nodes.GetTier(p.NodeID)
	if err != nil {
		return nil, err
	}
	limit, err := s.params.tierCap(tier)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Min(value, limit), nil
}

// Join stakes the bonded token and registers the staker's node.
func (s *Staking) Join(staker, nodeAddress muon.Address, peerID string, backingID uint64, now uint64) error {
	logger.Debug("joining", "staker", staker, "node", nodeAddress, "backing", backingID)

	value, err := s.ValueOfBondedToken(backingID)
	if err != nil {
		return err
	}
	minStake, err := s.params.minStake.Get()
	if err != nil {
		return err
	}
	if value.Lt(minStake) {
		return ErrInsufficientStake.Wrapf("value %s, minimum %s", fixedpoint.Format(value), fixedpoint.Format(minStake))
	}
	owner, err := s.bonded.OwnerOf(backingID)
	if err != nil {
		return err
	}
	if owner != staker {
		return ErrNotBackingOwner.Wrapf("bonded token %d owned by %s", backingID, owner)
	}

	rpt, err := s.rewards.Checkpoint(now)
	if err != nil {
		return err
	}
	p, err := s.participants.Admit(staker, backingID, rpt)
	if err != nil {
		return err
	}
	if p.NodeID, err = s.nodes.AddNode(nodeAddress, staker, peerID, true, now); err != nil {
		return err
	}
	if p.Balance, err = s.clampedValue(p); err != nil {
		return err
	}
	if err := s.rewards.AddStake(p.Balance); err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	if err := s.bonded.Transfer(backingID, staker, s.address); err != nil {
		return err
	}

	s.emit(Staked{Staker: staker, NodeID: p.NodeID, NodeAddress: nodeAddress, BackingID: backingID, Balance: p.Balance})
	logger.Info("joined", "staker", staker, "nodeID", p.NodeID, "balance", fixedpoint.Format(p.Balance))
	return nil
}

// RefreshStake re-reads the backing value and re-clamps the balance to the tier cap.
func (s *Staking) RefreshStake(staker muon.Address, now uint64) error {
	logger.Debug("refreshing stake", "staker", staker)

	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if p.Status(now) != participant.StatusActive {
		return participant.ErrNotActive.Wrapf("%s is %s", staker, p.Status(now))
	}
	active, err := s.nodes.IsActive(p.NodeID)
	if err != nil {
		return err
	}
	if !active {
		return participant.ErrNotActive.Wrapf("node %d is deactivated", p.NodeID)
	}

	rpt, err := s.rewards.Checkpoint(now)
	if err != nil {
		return err
	}
	if err := participant.Settle(p, rpt); err != nil {
		return err
	}
	balance, err := s.clampedValue(p)
	if err != nil {
		return err
	}
	if err := s.rewards.SubStake(p.Balance); err != nil {
		return err
	}
	if err := s.rewards.AddStake(balance); err != nil {
		return err
	}
	p.Balance = balance
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}

	total, err := s.rewards.TotalStaked()
	if err != nil {
		return err
	}
	s.emit(StakeRefreshed{Staker: staker, Balance: balance, TotalStaked: total})
	logger.Info("stake refreshed", "staker", staker, "balance", fixedpoint.Format(balance))
	return nil
}

// LockToBondedToken locks more tokens from the staker into the staked bonded token.
func (s *Staking) LockToBondedToken(staker muon.Address, backingID uint64, tokens []muon.Address, amounts []*uint256.Int, now uint64) error {
	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if p.BackingID != backingID {
		return ErrBackingMismatch.Wrapf("staked %d, given %d", p.BackingID, backingID)
	}
	if err := s.bonded.Lock(backingID, staker, tokens, amounts); err != nil {
		return err
	}
	return s.RefreshStake(staker, now)
}

// MergeBondedTokens merges another bonded token of the staker into the staked one.
func (s *Staking) MergeBondedTokens(staker muon.Address, sourceID, targetID uint64, now uint64) error {
	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if p.BackingID != targetID {
		return ErrBackingMismatch.Wrapf("staked %d, given %d", p.BackingID, targetID)
	}
	if err := s.bonded.Transfer(sourceID, staker, s.address); err != nil {
		return err
	}
	if err := s.bonded.Merge(s.address, sourceID, targetID); err != nil {
		return err
	}
	return s.RefreshStake(staker, now)
}

// RequestExit stops accrual, removes the balance from the total and starts the cooldown.
func (s *Staking) RequestExit(staker muon.Address, now uint64) error {
	logger.Debug("requesting exit", "staker", staker)

	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if p.Exited() {
		return participant.ErrAlreadyExited.Wrapf("at %d", p.ExitRequestedAt)
	}
	period, err := s.params.exitPendingPeriod.Uint64()
	if err != nil {
		return err
	}

	rpt, err := s.rewards.Checkpoint(now)
	if err != nil {
		return err
	}
	if err := participant.Settle(p, rpt); err != nil {
		return err
	}
	released, err := participant.RequestExit(p, now, period)
	if err != nil {
		return err
	}
	if err := s.rewards.SubStake(released); err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	if err := s.nodes.Deactivate(p.NodeID, now); err != nil {
		return err
	}

	s.emit(ExitRequested{Staker: staker, WithdrawableAt: p.WithdrawableAt, PendingRewards: p.PendingRewards})
	logger.Info("exit requested", "staker", staker, "withdrawableAt", p.WithdrawableAt)
	return nil
}

// Withdraw returns the bonded token once the cooldown elapsed and the stake is not locked.
func (s *Staking) Withdraw(staker muon.Address, now uint64) error {
	logger.Debug("withdrawing", "staker", staker)

	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	backingID, err := s.participants.Release(p, now)
	if err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	if err := s.bonded.Transfer(backingID, s.address, staker); err != nil {
		return err
	}

	s.emit(Withdrawn{Staker: staker, BackingID: backingID})
	logger.Info("withdrawn", "staker", staker, "backing", backingID)
	return nil
}

// GetReward pays amount to staker against a quote signed by the signing network.
func (s *Staking) GetReward(
	staker muon.Address,
	amount *uint256.Int,
	rewardPerToken *uint256.Int,
	reqID muon.Bytes32,
	sig []byte,
	now uint64,
) error {
	logger.Debug("claiming reward", "staker", staker, "reqID", reqID, "amount", fixedpoint.Format(amount))

	p, err := s.participants.Get(staker)
	if err != nil {
		return err
	}
	if !p.CanClaim() {
		return participant.ErrNotFound.Wrapf("%s", staker)
	}
	current, err := s.rewards.Checkpoint(now)
	if err != nil {
		return err
	}
	if err := gate.CheckFreshness(rewardPerToken, p.PaidRewardPerToken, current); err != nil {
		return err
	}
	appID, err := s.params.appID.Get()
	if err != nil {
		return err
	}
	key, err := s.params.publicKey.Get()
	if err != nil {
		return err
	}
	quote := &gate.Quote{
		AppID:          appID,
		ReqID:          reqID,
		Staker:         staker,
		PaidReward:     p.PaidReward,
		RewardPerToken: rewardPerToken,
		Amount:         amount,
	}
	if err := s.gate.Admit(quote, sig, key, s.verifier); err != nil {
		return err
	}
	if err := participant.Pay(p, amount, rewardPerToken); err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	if err := s.rewardToken.Transfer(s.address, staker, amount); err != nil {
		return err
	}

	s.emit(RewardClaimed{Staker: staker, ReqID: reqID, Amount: amount})
	logger.Info("reward claimed", "staker", staker, "reqID", reqID, "amount", fixedpoint.Format(amount))
	return nil
}

// DistributeRewards starts a new reward period of amount. The reward must
// already be held by the staking account.
func (s *Staking) DistributeRewards(distributor access.Capability, amount *uint256.Int, now uint64) error {
	if err := s.roles.Require(distributor, access.RoleReward); err != nil {
		return err
	}
	if _, err := s.rewards.Checkpoint(now); err != nil {
		return err
	}
	available, err := s.rewardToken.BalanceOf(s.address)
	if err != nil {
		return err
	}
	rate, err := s.rewards.Distribute(amount, available, now)
	if err != nil {
		return err
	}

	s.emit(RewardsDistributed{Amount: amount, RewardRate: rate, PeriodFinish: now + muon.RewardPeriod})
	logger.Info("rewards distributed", "amount", fixedpoint.Format(amount), "rate", rate)
	return nil
}

// LockStake blocks withdrawal of an exiting stake.
func (s *Staking) LockStake(distributor access.Capability, staker muon.Address) error {
	if err := s.roles.Require(distributor, access.RoleReward); err != nil {
		return err
	}
	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if err := participant.Lock(p); err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	s.emit(StakeLocked{Staker: staker})
	logger.Info("stake locked", "staker", staker)
	return nil
}

// UnlockStake restores withdrawal of a locked stake.
func (s *Staking) UnlockStake(distributor access.Capability, staker muon.Address) error {
	if err := s.roles.Require(distributor, access.RoleReward); err != nil {
		return err
	}
	p, err := s.participants.GetStaked(staker)
	if err != nil {
		return err
	}
	if err := participant.Unlock(p); err != nil {
		return err
	}
	if err := s.participants.Set(staker, p); err != nil {
		return err
	}
	s.emit(StakeUnlocked{Staker: staker})
	logger.Info("stake unlocked", "staker", staker)
	return nil
}
