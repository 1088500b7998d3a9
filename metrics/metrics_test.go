// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestNoopMetrics(t *testing.T) {
	// the noop singleton is installed until prometheus is initialized
	m := defaultNoopMetrics()
	m.GetOrCreateCountVecMeter("calls", []string{"op"}).AddWithLabel(1, map[string]string{"op": "join"})
	m.GetOrCreateGaugeMeter("staked").Set(10)
	m.GetOrCreateHistogramVecMeter("latency", []string{"op"}, nil).ObserveWithLabels(1, nil)

	server := httptest.NewServer(m.GetOrCreateHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	calls := LazyLoadCounterVec("test_calls_count", []string{"op"})
	staked := LazyLoadGauge("test_total_staked")
	latency := LazyLoadHistogramVec("test_call_duration_ms", []string{"op"}, BucketCallMillis)

	calls().AddWithLabel(1, map[string]string{"op": "join"})
	calls().AddWithLabel(2, map[string]string{"op": "join"})
	staked().Set(3000)
	staked().Add(-1000)
	latency().ObserveWithLabels(7, map[string]string{"op": "join"})

	// same name returns the registered meter instead of re-registering
	CounterVec("test_calls_count", []string{"op"}).AddWithLabel(1, map[string]string{"op": "join"})

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	require.Contains(t, byName, "muon_ledger_test_calls_count")
	assert.Equal(t, float64(4), byName["muon_ledger_test_calls_count"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(2000), byName["muon_ledger_test_total_staked"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(7), byName["muon_ledger_test_call_duration_ms"].Metric[0].GetHistogram().GetSampleSum())

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "muon_ledger_test_total_staked 2000")
}
