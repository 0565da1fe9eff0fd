// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, m := range All {
		got, err := Parse(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		got, err = Parse(m.AverageKey())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := Parse("Cost")
	require.ErrorIs(t, err, ErrUnknownMetric, "names are case-sensitive")

	_, err = Parse("throughput")
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestParseList(t *testing.T) {
	got, err := ParseList(nil)
	require.NoError(t, err)
	assert.Equal(t, All, got)

	got, err = ParseList([]string{"runtime", "average_cost"})
	require.NoError(t, err)
	assert.Equal(t, []Metric{Runtime, Cost}, got)

	_, err = ParseList([]string{"cost", "nope"})
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestMetricKeys(t *testing.T) {
	assert.Equal(t, "average_highLevelExpanded", HighLevelExpanded.AverageKey())
	assert.Equal(t, "num_scenarios_makespan", Makespan.CountKey())
	assert.Equal(t, "unknown", Metric(99).String())
	assert.False(t, Metric(99).Valid())
}
