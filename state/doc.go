// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the staking ledger.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv batch ]
//	        |
//	   [ kv getter ]
//
// Every mutating ledger call runs on a fresh State. Reverting to a checkpoint
// discards writes made after it, and only a successful call is staged and
// written to the store.
package state
