// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/siftal/muon-contracts/kv"
)

// Stage abstracts the net storage changes of a state.
type Stage struct {
	changes map[storageKey]rlp.RawValue
	order   []storageKey
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes the changes into the putter, deleting emptied slots.
func (s *Stage) Commit(putter kv.Putter) error {
	return s.Each(func(key, value []byte) error {
		if len(value) == 0 {
			return putter.Delete(key)
		}
		return putter.Put(key, value)
	})
}

// Each calls cb for every changed slot in first-write order.
func (s *Stage) Each(cb func(key, value []byte) error) error {
	for _, k := range s.order {
		if err := cb(StorageKey(k.addr, k.key), s.changes[k]); err != nil {
			return &Error{err}
		}
	}
	return nil
}
