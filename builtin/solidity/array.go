// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/pkg/errors"

	"github.com/siftal/muon-contracts/muon"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Array is a dense dynamic array, similar to a Solidity storage array.
// The length lives at pos and the items in a mapping derived from pos.
type Array[V any] struct {
	length *Uint256
	items  *Mapping[Index, V]
}

func NewArray[V any](context *Context, pos muon.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[Index, V](context, muon.Blake2b(pos.Bytes())),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Uint64()
}

func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, errors.Wrapf(ErrIndexOutOfRange, "get %d of %d", i, n)
	}
	return a.items.Get(Index(i))
}

func (a *Array[V]) Set(i uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return errors.Wrapf(ErrIndexOutOfRange, "set %d of %d", i, n)
	}
	return a.items.Set(Index(i), value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(Index(n), value); err != nil {
		return 0, err
	}
	a.length.SetUint64(n + 1)
	return n, nil
}

// Pop removes the last item.
func (a *Array[V]) Pop() error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(ErrIndexOutOfRange, "pop empty array")
	}
	a.items.Delete(Index(n - 1))
	a.length.SetUint64(n - 1)
	return nil
}

// All returns the items in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	items := make([]V, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := a.items.Get(Index(i))
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
