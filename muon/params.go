// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muon

// Constants of the staking ledger.
const (
	Day uint64 = 24 * 60 * 60

	RewardPeriod uint64 = 30 * Day // a distribution is paid out linearly over this period

	DefaultExitPendingPeriod uint64 = 7 * Day

	MaxTier uint8 = 16 // tiers above this are unknown to the ledger
)
