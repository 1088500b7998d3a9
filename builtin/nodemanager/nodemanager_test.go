// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

var (
	admin = muon.BytesToAddress([]byte("admin"))
	dao   = muon.BytesToAddress([]byte("dao"))
)

func newManager(t *testing.T) (*NodeManager, access.Capability) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sctx := solidity.NewContext(muon.BytesToAddress([]byte("NodeManager")), state.New(db))
	roles := access.New(sctx)
	require.NoError(t, roles.Initialize(admin))
	adminCap, err := roles.Authorize(admin, access.RoleAdmin)
	require.NoError(t, err)
	_, err = roles.Grant(adminCap, access.RoleDAO, dao)
	require.NoError(t, err)
	daoCap, err := roles.Authorize(dao, access.RoleDAO)
	require.NoError(t, err)
	return New(sctx, roles), daoCap
}

func M(a ...any) []any {
	return a
}

func TestAddNode(t *testing.T) {
	m, _ := newManager(t)
	n1, s1 := muon.BytesToAddress([]byte("n1")), muon.BytesToAddress([]byte("s1"))
	n2, s2 := muon.BytesToAddress([]byte("n2")), muon.BytesToAddress([]byte("s2"))

	id, err := m.AddNode(n1, s1, "peer1", true, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	node, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, &Node{ID: 1, NodeAddress: n1, StakerAddress: s1, PeerID: "peer1", Active: true, StartTime: 100, LastEditTime: 100}, node)

	_, err = m.AddNode(n1, s2, "peer2", true, 100)
	assert.ErrorIs(t, err, ErrNodeAddressRegistered)
	_, err = m.AddNode(n2, s1, "peer2", true, 100)
	assert.ErrorIs(t, err, ErrStakerAddressRegistered)

	byStaker, err := m.StakerAddressInfo(s1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), byStaker.ID)

	missing, err := m.NodeAddressInfo(n2)
	require.NoError(t, err)
	assert.True(t, missing.IsEmpty())
}

func TestDeactivate(t *testing.T) {
	m, _ := newManager(t)
	n1, s1 := muon.BytesToAddress([]byte("n1")), muon.BytesToAddress([]byte("s1"))

	_, err := m.AddNode(n1, s1, "peer1", true, 100)
	require.NoError(t, err)

	require.NoError(t, m.Deactivate(1, 200))
	assert.Equal(t, M(false, nil), M(m.IsActive(1)))
	node, _ := m.Get(1)
	assert.Equal(t, uint64(200), node.EndTime)

	assert.ErrorIs(t, m.Deactivate(1, 300), ErrAlreadyDeactivated)
	assert.ErrorIs(t, m.Deactivate(2, 300), ErrNodeNotFound)

	// the addresses are free again
	id, err := m.AddNode(n1, s1, "peer1", true, 400)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
	byNode, _ := m.NodeAddressInfo(n1)
	assert.Equal(t, uint64(2), byNode.ID)
}

func TestActiveList(t *testing.T) {
	m, _ := newManager(t)
	for i := byte(1); i <= 4; i++ {
		_, err := m.AddNode(muon.Address{i}, muon.Address{0xff, i}, "peer", i != 3, uint64(i))
		require.NoError(t, err)
	}

	ids := func() []uint64 {
		nodes, err := m.ActiveNodes()
		require.NoError(t, err)
		var ids []uint64
		for _, n := range nodes {
			ids = append(ids, n.ID)
		}
		return ids
	}
	assert.Equal(t, []uint64{1, 2, 4}, ids())

	require.NoError(t, m.Deactivate(2, 10))
	assert.Equal(t, []uint64{1, 4}, ids())
	require.NoError(t, m.Deactivate(1, 10))
	require.NoError(t, m.Deactivate(4, 10))
	assert.Empty(t, ids())
	assert.Equal(t, M(uint64(0), nil), M(m.ActiveCount()))

	_, err := m.AddNode(muon.Address{5}, muon.Address{0xff, 5}, "peer", true, 11)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, ids())
	assert.Equal(t, M(uint64(1), nil), M(m.ActiveCount()))
}

func TestSetTier(t *testing.T) {
	m, daoCap := newManager(t)
	_, err := m.AddNode(muon.Address{1}, muon.Address{2}, "peer", true, 1)
	require.NoError(t, err)

	require.NoError(t, m.SetTier(daoCap, 1, 2, 5))
	assert.Equal(t, M(uint8(2), nil), M(m.GetTier(1)))

	assert.ErrorIs(t, m.SetTier(daoCap, 1, muon.MaxTier+1, 5), ErrUnknownTier)
	assert.ErrorIs(t, m.SetTier(daoCap, 9, 1, 5), ErrNodeNotFound)
	assert.ErrorIs(t, m.SetTier(access.Capability{}, 1, 1, 5), access.ErrWrongCapability)
}

func TestEditedNodes(t *testing.T) {
	m, daoCap := newManager(t)
	for i := byte(1); i <= 5; i++ {
		_, err := m.AddNode(muon.Address{i}, muon.Address{0xff, i}, "peer", true, uint64(i)*100)
		require.NoError(t, err)
	}
	require.NoError(t, m.SetTier(daoCap, 1, 1, 1000))

	all, err := m.EditedNodes(0, 1, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	edited, err := m.EditedNodes(350, 1, 1000)
	require.NoError(t, err)
	var ids []uint64
	for _, n := range edited {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []uint64{1, 4, 5}, ids)
	assert.Equal(t, M(uint64(5), nil), M(m.LastNodeID()))
}
