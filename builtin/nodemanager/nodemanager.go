// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nodemanager is the registry of nodes run by stakers.
package nodemanager

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/muon"
)

var (
	logger  = log.WithContext("pkg", "nodemanager")
	oneNode = uint256.NewInt(1)
)

var (
	ErrNodeAddressRegistered   = reverts.New(reverts.Validation, "Node address is already registered.")
	ErrStakerAddressRegistered = reverts.New(reverts.Validation, "Staker address is already registered.")
	ErrNodeNotFound            = reverts.New(reverts.Validation, "Node ID not found.")
	ErrAlreadyDeactivated      = reverts.New(reverts.State, "Node is already deactivated.")
	ErrUnknownTier             = reverts.New(reverts.Validation, "Unknown tier.")
)

var (
	slotNodes     = muon.BytesToBytes32([]byte("nodes"))
	slotByNode    = muon.BytesToBytes32([]byte("node-address-ids"))
	slotByStaker  = muon.BytesToBytes32([]byte("staker-address-ids"))
	slotLastID    = muon.BytesToBytes32([]byte("last-node-id"))
	slotHead      = muon.BytesToBytes32([]byte("active-head"))
	slotTail      = muon.BytesToBytes32([]byte("active-tail"))
	slotActiveLen = muon.BytesToBytes32([]byte("active-count"))
)

// NodeManager implements the node registry.
type NodeManager struct {
	roles    *access.Control
	nodes    *solidity.Mapping[solidity.Index, *Node]
	byNode   *solidity.Mapping[muon.Address, uint64]
	byStaker *solidity.Mapping[muon.Address, uint64]
	lastID   *solidity.Uint256
	head     *solidity.Uint256
	tail     *solidity.Uint256
	active   *solidity.Uint256
}

// New creates a registry stored under sctx. Tier assignment is checked against roles.
func New(sctx *solidity.Context, roles *access.Control) *NodeManager {
	return &NodeManager{
		roles:    roles,
		nodes:    solidity.NewMapping[solidity.Index, *Node](sctx, slotNodes),
		byNode:   solidity.NewMapping[muon.Address, uint64](sctx, slotByNode),
		byStaker: solidity.NewMapping[muon.Address, uint64](sctx, slotByStaker),
		lastID:   solidity.NewUint256(sctx, slotLastID),
		head:     solidity.NewUint256(sctx, slotHead),
		tail:     solidity.NewUint256(sctx, slotTail),
		active:   solidity.NewUint256(sctx, slotActiveLen),
	}
}

// Get returns the node by id, an empty node when absent.
func (m *NodeManager) Get(id uint64) (*Node, error) {
	return m.nodes.Get(solidity.Index(id))
}

// NodeAddressInfo returns the latest node registered with the node address.
func (m *NodeManager) NodeAddressInfo(nodeAddress muon.Address) (*Node, error) {
	id, err := m.byNode.Get(nodeAddress)
	if err != nil {
		return nil, err
	}
	return m.Get(id)
}

// StakerAddressInfo returns the latest node registered by the staker.
func (m *NodeManager) StakerAddressInfo(staker muon.Address) (*Node, error) {
	id, err := m.byStaker.Get(staker)
	if err != nil {
		return nil, err
	}
	return m.Get(id)
}

// LastNodeID returns the id of the most recently added node.
func (m *NodeManager) LastNodeID() (uint64, error) {
	return m.lastID.Uint64()
}

// ActiveCount returns the number of active nodes.
func (m *NodeManager) ActiveCount() (uint64, error) {
	return m.active.Uint64()
}

func (m *NodeManager) getExisting(id uint64) (*Node, error) {
	node, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if node.IsEmpty() {
		return nil, ErrNodeNotFound.Wrapf("id %d", id)
	}
	return node, nil
}

// an address may register again once its previous node is deactivated
func (m *NodeManager) available(index *solidity.Mapping[muon.Address, uint64], addr muon.Address) (bool, error) {
	id, err := index.Get(addr)
	if err != nil {
		return false, err
	}
	if id == 0 {
		return true, nil
	}
	node, err := m.Get(id)
	if err != nil {
		return false, err
	}
	return !node.Active, nil
}

// AddNode registers a node and returns its id.
func (m *NodeManager) AddNode(nodeAddress, staker muon.Address, peerID string, active bool, now uint64) (uint64, error) {
	ok, err := m.available(m.byNode, nodeAddress)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNodeAddressRegistered.Wrapf("%s", nodeAddress)
	}
	if ok, err = m.available(m.byStaker, staker); err != nil {
		return 0, err
	} else if !ok {
		return 0, ErrStakerAddressRegistered.Wrapf("%s", staker)
	}

	last, err := m.lastID.Uint64()
	if err != nil {
		return 0, err
	}
	id := last + 1
	m.lastID.SetUint64(id)

	node := &Node{
		ID:            id,
		NodeAddress:   nodeAddress,
		StakerAddress: staker,
		PeerID:        peerID,
		StartTime:     now,
		LastEditTime:  now,
	}
	if err := m.byNode.Set(nodeAddress, id); err != nil {
		return 0, err
	}
	if err := m.byStaker.Set(staker, id); err != nil {
		return 0, err
	}
	if active {
		if err := m.link(node); err != nil {
			return 0, err
		}
	}
	if err := m.nodes.Set(solidity.Index(id), node); err != nil {
		return 0, err
	}
	logger.Debug("node added", "id", id, "node", nodeAddress, "staker", staker, "active", active)
	return id, nil
}

// Deactivate marks the node inactive and removes it from the active list.
func (m *NodeManager) Deactivate(id uint64, now uint64) error {
	node, err := m.getExisting(id)
	if err != nil {
		return err
	}
	if !node.Active {
		return ErrAlreadyDeactivated.Wrapf("id %d", id)
	}
	if err := m.unlink(node); err != nil {
		return err
	}
	node.EndTime = now
	node.LastEditTime = now
	if err := m.nodes.Set(solidity.Index(id), node); err != nil {
		return err
	}
	logger.Debug("node deactivated", "id", id)
	return nil
}

// IsActive returns whether the node is active.
func (m *NodeManager) IsActive(id uint64) (bool, error) {
	node, err := m.Get(id)
	if err != nil {
		return false, err
	}
	return node.Active, nil
}

// GetTier returns the tier of the node.
func (m *NodeManager) GetTier(id uint64) (uint8, error) {
	node, err := m.getExisting(id)
	if err != nil {
		return 0, err
	}
	return node.Tier, nil
}

// SetTier assigns a tier, requires the DAO capability.
func (m *NodeManager) SetTier(dao access.Capability, id uint64, tier uint8, now uint64) error {
	if err := m.roles.Require(dao, access.RoleDAO); err != nil {
		return err
	}
	if tier > muon.MaxTier {
		return ErrUnknownTier.Wrapf("tier %d", tier)
	}
	node, err := m.getExisting(id)
	if err != nil {
		return err
	}
	node.Tier = tier
	node.LastEditTime = now
	return m.nodes.Set(solidity.Index(id), node)
}

// EditedNodes returns nodes in the id range [from, to] edited after lastEditTime.
func (m *NodeManager) EditedNodes(lastEditTime, from, to uint64) ([]*Node, error) {
	last, err := m.lastID.Uint64()
	if err != nil {
		return nil, err
	}
	if from == 0 {
		from = 1
	}
	if to > last {
		to = last
	}
	var nodes []*Node
	for id := from; id <= to; id++ {
		node, err := m.Get(id)
		if err != nil {
			return nil, err
		}
		if node.LastEditTime > lastEditTime {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// ActiveNodes lists active nodes in registration order.
func (m *NodeManager) ActiveNodes() ([]*Node, error) {
	id, err := m.head.Uint64()
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	for id != 0 {
		node, err := m.Get(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		id = node.Next
	}
	return nodes, nil
}

// link appends the node to the active list. The caller saves node.
func (m *NodeManager) link(node *Node) error {
	tail, err := m.tail.Uint64()
	if err != nil {
		return err
	}
	node.Active = true
	node.Prev = tail
	node.Next = 0
	m.tail.SetUint64(node.ID)
	if tail == 0 {
		m.head.SetUint64(node.ID)
	} else {
		tailNode, err := m.Get(tail)
		if err != nil {
			return err
		}
		tailNode.Next = node.ID
		if err := m.nodes.Set(solidity.Index(tail), tailNode); err != nil {
			return err
		}
	}
	return m.active.Add(oneNode)
}

// unlink removes the node from the active list. The caller saves node.
func (m *NodeManager) unlink(node *Node) error {
	if node.Prev == 0 {
		m.head.SetUint64(node.Next)
	} else {
		prev, err := m.Get(node.Prev)
		if err != nil {
			return err
		}
		prev.Next = node.Next
		if err := m.nodes.Set(solidity.Index(node.Prev), prev); err != nil {
			return err
		}
	}
	if node.Next == 0 {
		m.tail.SetUint64(node.Prev)
	} else {
		next, err := m.Get(node.Next)
		if err != nil {
			return err
		}
		next.Prev = node.Prev
		if err := m.nodes.Set(solidity.Index(node.Next), next); err != nil {
			return err
		}
	}
	node.Prev, node.Next = 0, 0
	node.Active = false
	return m.active.Sub(oneNode)
}
