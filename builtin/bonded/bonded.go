// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bonded implements bonded tokens: transferable bundles of locked
// fungible tokens used as stake backing.
package bonded

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/token"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/muon"
)

var logger = log.WithContext("pkg", "bonded")

var (
	ErrNotFound        = reverts.New(reverts.Validation, "Bonded token does not exist.")
	ErrNotOwner        = reverts.New(reverts.Authorization, "Caller is not the owner of the bonded token.")
	ErrLengthMismatch  = reverts.New(reverts.Validation, "Tokens and amounts length mismatch.")
	ErrSameToken       = reverts.New(reverts.Validation, "Cannot merge a bonded token into itself.")
	ErrZeroAddressDest = reverts.New(reverts.Validation, "Transfer to the zero address.")
)

var (
	slotBonds  = muon.BytesToBytes32([]byte("bonds"))
	slotLastID = muon.BytesToBytes32([]byte("last-bond-id"))
)

// Bond is the body of a bonded token.
type Bond struct {
	Owner   muon.Address
	Tokens  []muon.Address
	Amounts []*uint256.Int
}

// IsEmpty returns whether the bond was never minted or is burned.
func (b *Bond) IsEmpty() bool {
	return b.Owner.IsZero()
}

func (b *Bond) add(tok muon.Address, amount *uint256.Int) error {
	for i, t := range b.Tokens {
		if t == tok {
			sum, err := fixedpoint.Add(b.Amounts[i], amount)
			if err != nil {
				return err
			}
			b.Amounts[i] = sum
			return nil
		}
	}
	b.Tokens = append(b.Tokens, tok)
	b.Amounts = append(b.Amounts, amount.Clone())
	return nil
}

// Locked returns the locked amount of tok.
func (b *Bond) Locked(tok muon.Address) *uint256.Int {
	for i, t := range b.Tokens {
		if t == tok {
			return b.Amounts[i].Clone()
		}
	}
	return fixedpoint.Zero()
}

// Bonded keeps bonded tokens. Locked tokens are held by the contract address.
type Bonded struct {
	vault  muon.Address
	book   *token.Token
	bonds  *solidity.Mapping[solidity.Index, *Bond]
	lastID *solidity.Uint256
}

func New(sctx *solidity.Context, book *token.Token) *Bonded {
	return &Bonded{
		vault:  sctx.Address(),
		book:   book,
		bonds:  solidity.NewMapping[solidity.Index, *Bond](sctx, slotBonds),
		lastID: solidity.NewUint256(sctx, slotLastID),
	}
}

// Get returns the bond, an empty one when absent.
func (b *Bonded) Get(id uint64) (*Bond, error) {
	return b.bonds.Get(solidity.Index(id))
}

func (b *Bonded) getExisting(id uint64) (*Bond, error) {
	bond, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	if bond.IsEmpty() {
		return nil, ErrNotFound.Wrapf("id %d", id)
	}
	return bond, nil
}

func (b *Bonded) getOwned(id uint64, owner muon.Address) (*Bond, error) {
	bond, err := b.getExisting(id)
	if err != nil {
		return nil, err
	}
	if bond.Owner != owner {
		return nil, ErrNotOwner.Wrapf("id %d owned by %s, not %s", id, bond.Owner, owner)
	}
	return bond, nil
}

// OwnerOf returns the owner of the bonded token.
func (b *Bonded) OwnerOf(id uint64) (muon.Address, error) {
	bond, err := b.getExisting(id)
	if err != nil {
		return muon.Address{}, err
	}
	return bond.Owner, nil
}

// LockedOf returns the locked amounts of the given tokens, in order.
func (b *Bonded) LockedOf(id uint64, tokens []muon.Address) ([]*uint256.Int, error) {
	bond, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	amounts := make([]*uint256.Int, 0, len(tokens))
	for _, tok := range tokens {
		amounts = append(amounts, bond.Locked(tok))
	}
	return amounts, nil
}

func (b *Bonded) pull(bond *Bond, from muon.Address, tokens []muon.Address, amounts []*uint256.Int) error {
	if len(tokens) != len(amounts) {
		return ErrLengthMismatch.Wrapf("%d tokens, %d amounts", len(tokens), len(amounts))
	}
	for i, tok := range tokens {
		if err := b.book.Transfer(tok, from, b.vault, amounts[i]); err != nil {
			return err
		}
		if err := bond.add(tok, amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

// MintAndLock pulls tokens from owner into a new bonded token.
func (b *Bonded) MintAndLock(owner muon.Address, tokens []muon.Address, amounts []*uint256.Int) (uint64, error) {
	if owner.IsZero() {
		return 0, ErrZeroAddressDest
	}
	bond := &Bond{Owner: owner}
	if err := b.pull(bond, owner, tokens, amounts); err != nil {
		return 0, err
	}
	last, err := b.lastID.Uint64()
	if err != nil {
		return 0, err
	}
	id := last + 1
	b.lastID.SetUint64(id)
	if err := b.bonds.Set(solidity.Index(id), bond); err != nil {
		return 0, err
	}
	logger.Debug("bonded token minted", "id", id, "owner", owner)
	return id, nil
}

// Lock pulls more tokens from the payer into an existing bonded token.
func (b *Bonded) Lock(id uint64, from muon.Address, tokens []muon.Address, amounts []*uint256.Int) error {
	bond, err := b.getExisting(id)
	if err != nil {
		return err
	}
	if err := b.pull(bond, from, tokens, amounts); err != nil {
		return err
	}
	return b.bonds.Set(solidity.Index(id), bond)
}

// Merge moves everything locked in source into target and burns source.
// Both must be owned by owner.
func (b *Bonded) Merge(owner muon.Address, source, target uint64) error {
	if source == target {
		return ErrSameToken.Wrapf("id %d", source)
	}
	src, err := b.getOwned(source, owner)
	if err != nil {
		return err
	}
	dst, err := b.getOwned(target, owner)
	if err != nil {
		return err
	}
	for i, tok := range src.Tokens {
		if err := dst.add(tok, src.Amounts[i]); err != nil {
			return err
		}
	}
	if err := b.bonds.Set(solidity.Index(target), dst); err != nil {
		return err
	}
	b.bonds.Delete(solidity.Index(source))
	logger.Debug("bonded tokens merged", "source", source, "target", target)
	return nil
}

// Transfer changes the owner of the bonded token.
func (b *Bonded) Transfer(id uint64, from, to muon.Address) error {
	if to.IsZero() {
		return ErrZeroAddressDest
	}
	bond, err := b.getOwned(id, from)
	if err != nil {
		return err
	}
	bond.Owner = to
	return b.bonds.Set(solidity.Index(id), bond)
}
