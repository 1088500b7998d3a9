// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

type TestStruct struct {
	Field1 uint64
	Amount *uint256.Int
	Addr1  muon.Address
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(muon.Address{1}, state.New(db))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[muon.Address, *TestStruct](ctx, muon.Bytes32{1})
	key := muon.Address{2}

	empty, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, uint64(0), empty.Field1)

	exists, err := m.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	val := &TestStruct{Field1: 100, Amount: fixedpoint.Tokens(5), Addr1: muon.Address{3}}
	require.NoError(t, m.Set(key, val))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)

	m.Delete(key)
	exists, err = m.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingPositionsAreIsolated(t *testing.T) {
	ctx := newTestContext(t)
	a := NewMapping[Index, bool](ctx, muon.Bytes32{1})
	b := NewMapping[Index, bool](ctx, muon.Bytes32{2})

	require.NoError(t, a.Set(Index(7), true))

	v, err := b.Get(Index(7))
	require.NoError(t, err)
	assert.False(t, v)

	v, err = a.Get(Index(7))
	require.NoError(t, err)
	assert.True(t, v)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, muon.Bytes32{9})

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, u.Add(fixedpoint.Tokens(3)))
	require.NoError(t, u.Sub(fixedpoint.Tokens(1)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, fixedpoint.Tokens(2), v)

	assert.ErrorIs(t, u.Sub(fixedpoint.Tokens(3)), fixedpoint.ErrUnderflow)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, fixedpoint.Tokens(2), v, "failed sub must not write")

	u.SetUint64(42)
	n, err := u.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[muon.Address](ctx, muon.Bytes32{5})

	for i := byte(1); i <= 3; i++ {
		idx, err := arr.Push(muon.Address{i})
		require.NoError(t, err)
		assert.Equal(t, uint64(i-1), idx)
	}

	require.NoError(t, arr.Set(0, muon.Address{9}))
	require.NoError(t, arr.Pop())

	all, err := arr.All()
	require.NoError(t, err)
	assert.Equal(t, []muon.Address{{9}, {2}}, all)

	_, err = arr.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	require.NoError(t, arr.Pop())
	require.NoError(t, arr.Pop())
	assert.ErrorIs(t, arr.Pop(), ErrIndexOutOfRange)
}

func TestValue(t *testing.T) {
	ctx := newTestContext(t)
	v := NewValue[*TestStruct](ctx, muon.Bytes32{6})

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.Field1)

	require.NoError(t, v.Set(&TestStruct{Field1: 1, Amount: uint256.NewInt(2)}))
	got, err = v.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Field1)
	assert.Equal(t, uint256.NewInt(2), got.Amount)
}
