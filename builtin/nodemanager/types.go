// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodemanager

import (
	"github.com/siftal/muon-contracts/muon"
)

// Node is a registered node. ID zero means not found.
type Node struct {
	ID            uint64
	NodeAddress   muon.Address
	StakerAddress muon.Address
	PeerID        string
	Active        bool
	Tier          uint8
	StartTime     uint64
	LastEditTime  uint64
	EndTime       uint64

	// active list links, zero terminates
	Prev uint64
	Next uint64
}

// IsEmpty returns whether the node record is empty.
func (n *Node) IsEmpty() bool {
	return n.ID == 0
}

// IsLinked returns whether the node is in the active list.
func (n *Node) IsLinked() bool {
	return n.Prev != 0 || n.Next != 0
}
