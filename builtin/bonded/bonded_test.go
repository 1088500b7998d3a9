// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonded

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/token"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

var (
	pion   = muon.BytesToAddress([]byte("pion"))
	pionLP = muon.BytesToAddress([]byte("pion-lp"))
	vault  = muon.BytesToAddress([]byte("Bonded"))
)

func setup(t *testing.T) (*Bonded, *token.Token) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	book := token.New(solidity.NewContext(muon.BytesToAddress([]byte("Token")), st))
	return New(solidity.NewContext(vault, st), book), book
}

func TestMintLockAndMerge(t *testing.T) {
	b, book := setup(t)
	alice := muon.Address{1}
	require.NoError(t, book.Mint(pion, alice, fixedpoint.Tokens(3000)))
	require.NoError(t, book.Mint(pionLP, alice, fixedpoint.Tokens(1000)))

	id1, err := b.MintAndLock(alice, []muon.Address{pion, pionLP}, []*uint256.Int{fixedpoint.Tokens(1000), fixedpoint.Tokens(500)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)

	vaultBal, _ := book.BalanceOf(pion, vault)
	assert.Equal(t, fixedpoint.Tokens(1000), vaultBal)

	require.NoError(t, b.Lock(id1, alice, []muon.Address{pion}, []*uint256.Int{fixedpoint.Tokens(1000)}))

	id2, err := b.MintAndLock(alice, []muon.Address{pionLP}, []*uint256.Int{fixedpoint.Tokens(500)})
	require.NoError(t, err)

	require.NoError(t, b.Merge(alice, id2, id1))
	locked, err := b.LockedOf(id1, []muon.Address{pion, pionLP, {9}})
	require.NoError(t, err)
	assert.Equal(t, []*uint256.Int{fixedpoint.Tokens(2000), fixedpoint.Tokens(1000), fixedpoint.Zero()}, locked)

	_, err = b.OwnerOf(id2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransferAndOwnership(t *testing.T) {
	b, book := setup(t)
	alice, bob := muon.Address{1}, muon.Address{2}
	require.NoError(t, book.Mint(pion, alice, fixedpoint.Tokens(10)))
	require.NoError(t, book.Mint(pion, bob, fixedpoint.Tokens(10)))

	idA, err := b.MintAndLock(alice, []muon.Address{pion}, []*uint256.Int{fixedpoint.Tokens(5)})
	require.NoError(t, err)
	idB, err := b.MintAndLock(bob, []muon.Address{pion}, []*uint256.Int{fixedpoint.Tokens(5)})
	require.NoError(t, err)

	assert.ErrorIs(t, b.Transfer(idA, bob, bob), ErrNotOwner)
	assert.ErrorIs(t, b.Merge(alice, idB, idA), ErrNotOwner)
	assert.ErrorIs(t, b.Merge(alice, idA, idA), ErrSameToken)

	require.NoError(t, b.Transfer(idA, alice, bob))
	owner, err := b.OwnerOf(idA)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
	require.NoError(t, b.Merge(bob, idB, idA))
}

func TestMintRejections(t *testing.T) {
	b, book := setup(t)
	alice := muon.Address{1}
	require.NoError(t, book.Mint(pion, alice, fixedpoint.Tokens(1)))

	_, err := b.MintAndLock(alice, []muon.Address{pion}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = b.MintAndLock(alice, []muon.Address{pion}, []*uint256.Int{fixedpoint.Tokens(2)})
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
}
