// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

// InitializeRoles makes admin the first role administrator. It can run once.
func (s *Staking) InitializeRoles(admin muon.Address) error {
	if err := s.roles.Initialize(admin); err != nil {
		return err
	}
	s.emit(RoleGranted{Role: access.RoleAdmin, Account: admin, Sender: s.address})
	return nil
}

// Authorize issues the capability to act with role on behalf of holder.
func (s *Staking) Authorize(holder muon.Address, role access.Role) (access.Capability, error) {
	return s.roles.Authorize(holder, role)
}

func (s *Staking) GrantRole(admin access.Capability, role access.Role, account muon.Address) error {
	changed, err := s.roles.Grant(admin, role, account)
	if err != nil {
		return err
	}
	if changed {
		s.emit(RoleGranted{Role: role, Account: account, Sender: admin.Holder()})
		logger.Info("role granted", "role", role, "account", account, "sender", admin.Holder())
	}
	return nil
}

func (s *Staking) RevokeRole(admin access.Capability, role access.Role, account muon.Address) error {
	changed, err := s.roles.Revoke(admin, role, account)
	if err != nil {
		return err
	}
	if changed {
		s.emit(RoleRevoked{Role: role, Account: account, Sender: admin.Holder()})
		logger.Info("role revoked", "role", role, "account", account, "sender", admin.Holder())
	}
	return nil
}

func (s *Staking) SetTierMaxStakeAmount(dao access.Capability, tier uint8, amount *uint256.Int) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	if tier > muon.MaxTier {
		return ErrUnknownTier.Wrapf("tier %d", tier)
	}
	if err := s.params.tierCaps.Set(solidity.Index(tier), amount); err != nil {
		return err
	}
	s.emit(TierMaxStakeUpdated{Tier: tier, Amount: amount})
	logger.Info("tier cap updated", "tier", tier, "amount", fixedpoint.Format(amount))
	return nil
}

func (s *Staking) SetExitPendingPeriod(dao access.Capability, period uint64) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	s.params.exitPendingPeriod.SetUint64(period)
	s.emit(ExitPendingPeriodUpdated{Period: period})
	logger.Info("exit pending period updated", "period", period)
	return nil
}

func (s *Staking) SetMinStakeAmountPerNode(dao access.Capability, amount *uint256.Int) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	s.params.minStake.Set(amount)
	s.emit(MinStakeAmountPerNodeUpdated{Amount: amount})
	logger.Info("min stake updated", "amount", fixedpoint.Format(amount))
	return nil
}

func (s *Staking) SetMuonAppID(dao access.Capability, appID *uint256.Int) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	s.params.appID.Set(appID)
	s.emit(MuonAppIDUpdated{AppID: appID})
	logger.Info("app id updated", "appID", appID)
	return nil
}

func (s *Staking) SetMuonPublicKey(dao access.Capability, key tss.PublicKey) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return ErrInvalidPublicKey.Wrapf("%v", err)
	}
	if err := s.params.publicKey.Set(key); err != nil {
		return err
	}
	s.emit(MuonPublicKeyUpdated{PublicKey: key})
	logger.Info("public key updated", "key", key)
	return nil
}

// UpdateStakingTokens sets the multipliers of tokens; a zero multiplier removes the token.
func (s *Staking) UpdateStakingTokens(dao access.Capability, tokens []muon.Address, multipliers []*uint256.Int) error {
	if err := s.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	if err := s.tokens.Update(tokens, multipliers); err != nil {
		return err
	}
	for i, token := range tokens {
		s.emit(StakingTokenUpdated{Token: token, Multiplier: multipliers[i]})
	}
	logger.Info("staking tokens updated", "count", len(tokens))
	return nil
}

// InitializeDefaults fills parameters a store written by an older layout left unset.
func (s *Staking) InitializeDefaults() error {
	period, err := s.params.exitPendingPeriod.Uint64()
	if err != nil {
		return err
	}
	if period == 0 {
		s.params.exitPendingPeriod.SetUint64(muon.DefaultExitPendingPeriod)
		s.emit(ExitPendingPeriodUpdated{Period: muon.DefaultExitPendingPeriod})
	}
	return nil
}
