// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/kv"
	"github.com/siftal/muon-contracts/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1, b2 := kv.Bucket("s"), kv.Bucket("m")
	require.NoError(t, b1.NewPutter(db).Put([]byte("k"), []byte("v1")))
	require.NoError(t, b2.NewPutter(db).Put([]byte("k"), []byte("v2")))

	v, err := b1.NewGetter(db).Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	raw, err := db.Get([]byte("mk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), raw)

	require.NoError(t, b1.NewPutter(db).Delete([]byte("k")))
	_, err = b1.NewGetter(db).Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))

	it := db.NewIterator(b2.Range())
	defer it.Release()
	var n int
	for it.Next() {
		n++
	}
	assert.Equal(t, 1, n)
}
