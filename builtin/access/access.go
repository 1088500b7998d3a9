// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access keeps role membership for the builtin contracts and hands out
// capabilities. A privileged operation takes a Capability argument instead of
// looking at an ambient caller, and re-checks membership when it is used.
package access

import (
	"fmt"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/muon"
)

type Role uint8

const (
	RoleAdmin  Role = iota + 1 // grants and revokes roles
	RoleDAO                    // administrative parameters, tiers and staking tokens
	RoleReward                 // distributes rewards and locks stakes
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDAO:
		return "dao"
	case RoleReward:
		return "reward"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole parses the names used in configuration files.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleAdmin, RoleDAO, RoleReward} {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

var (
	ErrMissingRole     = reverts.New(reverts.Authorization, "AccessControl: account is missing role")
	ErrWrongCapability = reverts.New(reverts.Authorization, "AccessControl: capability does not grant this operation")
	ErrInitialized     = reverts.New(reverts.State, "AccessControl: already initialized")
)

var (
	slotMembers     = muon.BytesToBytes32([]byte("role-members"))
	slotInitialized = muon.BytesToBytes32([]byte("roles-initialized"))
)

// Capability proves that holder had role when it was issued.
// Its fields are unexported so only Authorize can produce a usable one.
type Capability struct {
	holder muon.Address
	role   Role
	issuer muon.Address
}

func (c Capability) Holder() muon.Address { return c.holder }
func (c Capability) Role() Role           { return c.role }

// Control stores role membership in the storage of one contract.
type Control struct {
	sctx        *solidity.Context
	members     *solidity.Mapping[muon.Bytes32, bool]
	initialized *solidity.Uint256
}

func New(sctx *solidity.Context) *Control {
	return &Control{
		sctx:        sctx,
		members:     solidity.NewMapping[muon.Bytes32, bool](sctx, slotMembers),
		initialized: solidity.NewUint256(sctx, slotInitialized),
	}
}

func memberKey(role Role, account muon.Address) muon.Bytes32 {
	return muon.Blake2b([]byte{byte(role)}, account.Bytes())
}

func (c *Control) HasRole(role Role, account muon.Address) (bool, error) {
	return c.members.Get(memberKey(role, account))
}

// Initialize makes account the first admin. It can run once, at genesis.
func (c *Control) Initialize(admin muon.Address) error {
	done, err := c.initialized.Uint64()
	if err != nil {
		return err
	}
	if done != 0 {
		return ErrInitialized
	}
	c.initialized.SetUint64(1)
	return c.members.Set(memberKey(RoleAdmin, admin), true)
}

// Authorize issues a capability for role to account, if account holds it.
func (c *Control) Authorize(account muon.Address, role Role) (Capability, error) {
	ok, err := c.HasRole(role, account)
	if err != nil {
		return Capability{}, err
	}
	if !ok {
		return Capability{}, ErrMissingRole.Wrapf("%s lacks %s", account, role)
	}
	return Capability{holder: account, role: role, issuer: c.sctx.Address()}, nil
}

// Require checks that capability grants role and that its holder still has it.
func (c *Control) Require(capability Capability, role Role) error {
	if capability.role != role || capability.issuer != c.sctx.Address() {
		return ErrWrongCapability.Wrapf("need %s, got %s", role, capability.role)
	}
	ok, err := c.HasRole(role, capability.holder)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingRole.Wrapf("%s no longer has %s", capability.holder, role)
	}
	return nil
}

// Grant adds account to role. It reports whether membership changed.
func (c *Control) Grant(admin Capability, role Role, account muon.Address) (bool, error) {
	return c.setMember(admin, role, account, true)
}

// Revoke removes account from role. It reports whether membership changed.
func (c *Control) Revoke(admin Capability, role Role, account muon.Address) (bool, error) {
	return c.setMember(admin, role, account, false)
}

func (c *Control) setMember(admin Capability, role Role, account muon.Address, member bool) (bool, error) {
	if err := c.Require(admin, RoleAdmin); err != nil {
		return false, err
	}
	if _, err := ParseRole(role.String()); err != nil {
		return false, reverts.New(reverts.Validation, err.Error())
	}
	current, err := c.HasRole(role, account)
	if err != nil {
		return false, err
	}
	if current == member {
		return false, nil
	}
	key := memberKey(role, account)
	if !member {
		c.members.Delete(key)
		return true, nil
	}
	return true, c.members.Set(key, true)
}
