// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/siftal/muon-contracts/metrics"
)

var (
	metricCallCount    = metrics.LazyLoadCounterVec("ledger_call_count", []string{"op", "status"})
	metricCallDuration = metrics.LazyLoadHistogramVec("ledger_call_duration_ms", []string{"op"}, metrics.BucketCallMillis)
	metricTotalStaked  = metrics.LazyLoadGauge("ledger_total_staked_tokens")
	metricUserCache    = metrics.LazyLoadCounterVec("ledger_user_cache_count", []string{"event"})
)
