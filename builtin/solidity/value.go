// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/siftal/muon-contracts/muon"
)

// Value stores a single rlp encoded value, e.g. a struct, in one position.
type Value[V any] struct {
	slot *Mapping[muon.Bytes32, V]
	pos  muon.Bytes32
}

func NewValue[V any](context *Context, pos muon.Bytes32) *Value[V] {
	return &Value[V]{slot: NewMapping[muon.Bytes32, V](context, pos), pos: pos}
}

func (v *Value[V]) Get() (V, error) {
	return v.slot.Get(v.pos)
}

func (v *Value[V]) Set(value V) error {
	return v.slot.Set(v.pos, value)
}
