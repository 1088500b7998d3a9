// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/siftal/muon-contracts/api/utils"
	"github.com/siftal/muon-contracts/builtin/staking/participant"
	"github.com/siftal/muon-contracts/ledger"
	"github.com/siftal/muon-contracts/muon"
)

// Ledger is the read side of the ledger.
type Ledger interface {
	View(fn func(env *ledger.Env) error) error
	User(staker muon.Address) (*participant.Participant, error)
}

type Staking struct {
	ledger Ledger
}

func New(l Ledger) *Staking {
	return &Staking{ledger: l}
}

func (s *Staking) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	var totals Totals
	if err := s.ledger.View(func(env *ledger.Env) error {
		snap, err := env.Staking.RewardState()
		if err != nil {
			return err
		}
		rpt, err := env.Staking.RewardPerToken(env.Now)
		if err != nil {
			return err
		}
		totals = Totals{
			TotalStaked:          amount(snap.TotalStaked),
			RewardRate:           snap.RewardRate.Dec(),
			RewardPerTokenStored: snap.RewardPerTokenStored.Dec(),
			RewardPerToken:       rpt.Dec(),
			LastUpdateTime:       snap.LastUpdateTime,
			PeriodFinish:         snap.PeriodFinish,
			Now:                  env.Now,
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &totals)
}

func (s *Staking) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := muon.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	p, err := s.ledger.User(*addr)
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return utils.NotFound(errors.Errorf("no staking record for %s", addr))
	}

	user := &User{
		Address:            *addr,
		NodeID:             p.NodeID,
		BondedTokenID:      p.BackingID,
		Balance:            amount(p.Balance),
		PaidReward:         amount(p.PaidReward),
		PendingRewards:     amount(p.PendingRewards),
		PaidRewardPerToken: p.PaidRewardPerToken.Dec(),
		ExitRequestedAt:    p.ExitRequestedAt,
		WithdrawableAt:     p.WithdrawableAt,
		Locked:             p.Locked,
	}
	if err := s.ledger.View(func(env *ledger.Env) error {
		earned, err := env.Staking.Earned(*addr, env.Now)
		if err != nil {
			return err
		}
		user.Earned = amount(earned)
		user.Status = p.Status(env.Now).String()
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, user)
}

func (s *Staking) handleGetTier(w http.ResponseWriter, req *http.Request) error {
	tier, err := strconv.ParseUint(mux.Vars(req)["tier"], 10, 8)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "tier"))
	}
	if uint8(tier) > muon.MaxTier {
		return utils.NotFound(errors.Errorf("tier %d", tier))
	}
	var result Tier
	if err := s.ledger.View(func(env *ledger.Env) error {
		maxStake, err := env.Staking.TiersMaxStakeAmount(uint8(tier))
		if err != nil {
			return err
		}
		result = Tier{Tier: uint8(tier), MaxStake: amount(maxStake)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &result)
}

func (s *Staking) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	result := make([]Token, 0)
	if err := s.ledger.View(func(env *ledger.Env) error {
		list, err := env.Staking.StakingTokenList()
		if err != nil {
			return err
		}
		for _, t := range list {
			result = append(result, Token{Address: t.Address, Multiplier: amount(t.Multiplier)})
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("GET /staking/totals").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/users/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/users/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUser))
	sub.Path("/tiers/{tier}").
		Methods(http.MethodGet).
		Name("GET /staking/tiers/{tier}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTier))
	sub.Path("/tokens").
		Methods(http.MethodGet).
		Name("GET /staking/tokens").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTokens))
}
