// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

func newControl(t *testing.T) *Control {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(muon.BytesToAddress([]byte("Access")), state.New(db)))
}

func TestCapabilities(t *testing.T) {
	c := newControl(t)
	admin, distributor := muon.Address{1}, muon.Address{2}

	require.NoError(t, c.Initialize(admin))
	assert.ErrorIs(t, c.Initialize(distributor), ErrInitialized)

	_, err := c.Authorize(distributor, RoleReward)
	assert.ErrorIs(t, err, ErrMissingRole)
	assert.Equal(t, reverts.Authorization, reverts.KindOf(err))

	adminCap, err := c.Authorize(admin, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin, adminCap.Holder())

	changed, err := c.Grant(adminCap, RoleReward, distributor)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = c.Grant(adminCap, RoleReward, distributor)
	require.NoError(t, err)
	assert.False(t, changed)

	rewardCap, err := c.Authorize(distributor, RoleReward)
	require.NoError(t, err)
	require.NoError(t, c.Require(rewardCap, RoleReward))

	// a capability for one role never grants another
	assert.ErrorIs(t, c.Require(rewardCap, RoleDAO), ErrWrongCapability)
	// the zero capability grants nothing
	assert.ErrorIs(t, c.Require(Capability{}, RoleAdmin), ErrWrongCapability)
	// non admins cannot grant
	_, err = c.Grant(rewardCap, RoleDAO, distributor)
	assert.ErrorIs(t, err, ErrWrongCapability)

	// revocation invalidates capabilities issued earlier
	changed, err = c.Revoke(adminCap, RoleReward, distributor)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ErrorIs(t, c.Require(rewardCap, RoleReward), ErrMissingRole)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("dao")
	require.NoError(t, err)
	assert.Equal(t, RoleDAO, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
