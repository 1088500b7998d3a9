// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
)

var ErrLengthMismatch = reverts.New(reverts.Validation, "Arrays length mismatch.")

var (
	slotEntries = muon.BytesToBytes32([]byte("staking-token-entries"))
	slotList    = muon.BytesToBytes32([]byte("staking-token-list"))
)

// Entry is the registry record of a staking token. Index is 1-based, zero means absent.
type Entry struct {
	Index      uint64
	Multiplier *uint256.Int
}

// Token is a registered staking token with its multiplier.
type Token struct {
	Address    muon.Address
	Multiplier *uint256.Int
}

// Service keeps the tokens whose locked amounts count toward stake.
type Service struct {
	entries *solidity.Mapping[muon.Address, *Entry]
	list    *solidity.Array[muon.Address]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		entries: solidity.NewMapping[muon.Address, *Entry](sctx, slotEntries),
		list:    solidity.NewArray[muon.Address](sctx, slotList),
	}
}

// IsStakingToken returns the 1-based index of the token, zero if not registered.
func (s *Service) IsStakingToken(token muon.Address) (uint64, error) {
	entry, err := s.entries.Get(token)
	if err != nil {
		return 0, err
	}
	return entry.Index, nil
}

// Multiplier returns the multiplier of the token, zero if not registered.
func (s *Service) Multiplier(token muon.Address) (*uint256.Int, error) {
	entry, err := s.entries.Get(token)
	if err != nil {
		return nil, err
	}
	if entry.Multiplier == nil {
		return fixedpoint.Zero(), nil
	}
	return entry.Multiplier, nil
}

// At returns the token at the 0-based position of the dense list.
func (s *Service) At(index uint64) (muon.Address, error) {
	return s.list.Get(index)
}

// Len returns the number of registered tokens.
func (s *Service) Len() (uint64, error) {
	return s.list.Len()
}

// List returns the registered tokens in list order.
func (s *Service) List() ([]Token, error) {
	addrs, err := s.list.All()
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(addrs))
	for _, addr := range addrs {
		m, err := s.Multiplier(addr)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, Token{Address: addr, Multiplier: m})
	}
	return tokens, nil
}

// Update adds, re-weights or removes tokens. A zero multiplier removes the
// token, moving the last token into its position.
func (s *Service) Update(tokens []muon.Address, multipliers []*uint256.Int) error {
	if len(tokens) != len(multipliers) {
		return ErrLengthMismatch.Wrapf("%d tokens, %d multipliers", len(tokens), len(multipliers))
	}
	for i, token := range tokens {
		var err error
		if multipliers[i].IsZero() {
			err = s.remove(token)
		} else {
			err = s.set(token, multipliers[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) set(token muon.Address, multiplier *uint256.Int) error {
	entry, err := s.entries.Get(token)
	if err != nil {
		return err
	}
	if entry.Index == 0 {
		pos, err := s.list.Push(token)
		if err != nil {
			return err
		}
		entry.Index = pos + 1
	}
	entry.Multiplier = multiplier.Clone()
	return s.entries.Set(token, entry)
}

func (s *Service) remove(token muon.Address) error {
	entry, err := s.entries.Get(token)
	if err != nil {
		return err
	}
	if entry.Index == 0 {
		return nil
	}
	n, err := s.list.Len()
	if err != nil {
		return err
	}
	if last := n - 1; entry.Index-1 != last {
		moved, err := s.list.Get(last)
		if err != nil {
			return err
		}
		if err := s.list.Set(entry.Index-1, moved); err != nil {
			return err
		}
		movedEntry, err := s.entries.Get(moved)
		if err != nil {
			return err
		}
		movedEntry.Index = entry.Index
		if err := s.entries.Set(moved, movedEntry); err != nil {
			return err
		}
	}
	if err := s.list.Pop(); err != nil {
		return err
	}
	s.entries.Delete(token)
	return nil
}

// ValueOf weighs locked amounts: Σ amount*multiplier/1e18 over registered tokens.
func (s *Service) ValueOf(locked func(tokens []muon.Address) ([]*uint256.Int, error)) (*uint256.Int, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	addrs := make([]muon.Address, 0, len(list))
	for _, t := range list {
		addrs = append(addrs, t.Address)
	}
	amounts, err := locked(addrs)
	if err != nil {
		return nil, err
	}
	value := fixedpoint.Zero()
	for i, t := range list {
		weighted, err := fixedpoint.MulDiv(amounts[i], t.Multiplier, fixedpoint.Scale)
		if err != nil {
			return nil, err
		}
		if value, err = fixedpoint.Add(value, weighted); err != nil {
			return nil, err
		}
	}
	return value, nil
}
