// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationURL(t *testing.T) {
	p := Paper{Title: "Quantum field theory and critical phenomena", ClusterID: 16499695044466828447}
	assert.Equal(t, "https://scholar.google.com/scholar?cites=16499695044466828447", p.CitationURL())

	// Derived from the id alone.
	q := Paper{Title: "other", ClusterID: p.ClusterID, Link: "https://example.org"}
	assert.Equal(t, p.CitationURL(), q.CitationURL())
}

func TestClusterURLForID(t *testing.T) {
	assert.Equal(t, "https://scholar.google.com/scholar?cluster=5545735591029960915", ClusterURLForID(5545735591029960915))
}

func TestClusterIDFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"https://scholar.google.com/scholar?cluster=12345", 12345, true},
		{"/scholar?cites=16499695044466828447&as_sdt=2005&sciodt=0,5&hl=en", 16499695044466828447, true},
		{"cluster=000000", 0, true},
		{"/scholar?q=related:abc:scholar.google.com/", 0, false},
		{"claster=000000", 0, false},
		{"cluster=aaaaaa", 0, false},
		{"cites=99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ClusterIDFromURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClusterIDRoundTrip(t *testing.T) {
	for _, id := range []uint64{0, 1, 5545735591029960915, 16499695044466828447, math.MaxUint64} {
		got, ok := ClusterIDFromURL(CitationURLForID(id))
		require.True(t, ok)
		assert.Equal(t, id, got)

		got, ok = ClusterIDFromURL(ClusterURLForID(id))
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestExpanded(t *testing.T) {
	p := Paper{ClusterID: 1}
	assert.False(t, p.Expanded())

	p.Citers = &CiterList{Papers: []Paper{}}
	assert.True(t, p.Expanded())
	assert.Empty(t, p.Citers.Papers)
}
