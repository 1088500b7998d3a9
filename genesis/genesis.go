// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial configuration of a ledger and applies it.
package genesis

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/ledger"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

// Amount is a token amount written as a decimal number of whole tokens.
type Amount uint256.Int

// Int returns the scaled amount.
func (a *Amount) Int() *uint256.Int {
	return (*uint256.Int)(a).Clone()
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, err := fixedpoint.Parse(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: amount %q", node.Line, node.Value)
	}
	*a = Amount(*v)
	return nil
}

func (a Amount) MarshalYAML() (any, error) {
	return fixedpoint.Format((*uint256.Int)(&a)), nil
}

// Tier caps the stake of nodes at a tier.
type Tier struct {
	Tier     uint8  `yaml:"tier" validate:"min=1,max=16"`
	MaxStake Amount `yaml:"maxStake" validate:"required"`
}

// StakingToken is a token accepted in bonded tokens.
type StakingToken struct {
	Address    muon.Address `yaml:"address" validate:"required"`
	Multiplier Amount       `yaml:"multiplier" validate:"required"`
}

// Balance is an initial token allocation.
type Balance struct {
	Token  muon.Address `yaml:"token" validate:"required"`
	Holder muon.Address `yaml:"holder" validate:"required"`
	Amount Amount       `yaml:"amount" validate:"required"`
}

// Genesis is the initial configuration of a ledger.
type Genesis struct {
	RewardToken muon.Address `yaml:"rewardToken" validate:"required"`

	Admin        muon.Address   `yaml:"admin" validate:"required"`
	DAO          []muon.Address `yaml:"dao" validate:"required,min=1,dive,required"`
	Distributors []muon.Address `yaml:"distributors" validate:"dive,required"`

	ExitPendingPeriod     uint64        `yaml:"exitPendingPeriod"`
	MinStakeAmountPerNode Amount        `yaml:"minStakeAmountPerNode" validate:"required"`
	MuonAppID             string        `yaml:"muonAppId" validate:"required,numeric"`
	MuonPublicKey         tss.PublicKey `yaml:"muonPublicKey"`

	Tiers         []Tier         `yaml:"tiers" validate:"required,min=1,dive"`
	StakingTokens []StakingToken `yaml:"stakingTokens" validate:"required,min=1,dive"`
	Balances      []Balance      `yaml:"balances" validate:"dive"`
}

var validate = validator.New()

// Load reads and validates a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis is complete and consistent.
func (g *Genesis) Validate() error {
	if err := validate.Struct(g); err != nil {
		return errors.Wrap(err, "invalid genesis")
	}
	if _, err := uint256.FromDecimal(g.MuonAppID); err != nil {
		return errors.Wrap(err, "invalid genesis: muonAppId")
	}
	if err := g.MuonPublicKey.Validate(); err != nil {
		return errors.Wrap(err, "invalid genesis: muonPublicKey")
	}
	seen := make(map[uint8]bool)
	for _, t := range g.Tiers {
		if seen[t.Tier] {
			return errors.Errorf("invalid genesis: tier %d listed twice", t.Tier)
		}
		seen[t.Tier] = true
	}
	return nil
}

// Apply writes the genesis into an empty ledger.
func (g *Genesis) Apply(env *ledger.Env) error {
	s := env.Staking
	if err := s.InitializeRoles(g.Admin); err != nil {
		return err
	}
	adminCap, err := s.Authorize(g.Admin, access.RoleAdmin)
	if err != nil {
		return err
	}
	for _, holder := range g.DAO {
		if err := s.GrantRole(adminCap, access.RoleDAO, holder); err != nil {
			return err
		}
	}
	for _, holder := range g.Distributors {
		if err := s.GrantRole(adminCap, access.RoleReward, holder); err != nil {
			return err
		}
	}

	dao, err := s.Authorize(g.DAO[0], access.RoleDAO)
	if err != nil {
		return err
	}
	if g.ExitPendingPeriod != 0 {
		if err := s.SetExitPendingPeriod(dao, g.ExitPendingPeriod); err != nil {
			return err
		}
	}
	if err := s.SetMinStakeAmountPerNode(dao, g.MinStakeAmountPerNode.Int()); err != nil {
		return err
	}
	appID, err := uint256.FromDecimal(g.MuonAppID)
	if err != nil {
		return errors.Wrap(err, "muonAppId")
	}
	if err := s.SetMuonAppID(dao, appID); err != nil {
		return err
	}
	if err := s.SetMuonPublicKey(dao, g.MuonPublicKey); err != nil {
		return err
	}
	for _, t := range g.Tiers {
		if err := s.SetTierMaxStakeAmount(dao, t.Tier, t.MaxStake.Int()); err != nil {
			return err
		}
	}

	tokens := make([]muon.Address, 0, len(g.StakingTokens))
	multipliers := make([]*uint256.Int, 0, len(g.StakingTokens))
	for _, t := range g.StakingTokens {
		tokens = append(tokens, t.Address)
		multipliers = append(multipliers, t.Multiplier.Int())
	}
	if err := s.UpdateStakingTokens(dao, tokens, multipliers); err != nil {
		return err
	}

	for _, b := range g.Balances {
		if err := env.Token.Mint(b.Token, b.Holder, b.Amount.Int()); err != nil {
			return err
		}
	}
	return nil
}
