package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketscope/server/internal/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "Same point",
			lat1: 13.7563, lon1: 100.5018,
			lat2: 13.7563, lon2: 100.5018,
			expected:  0,
			tolerance: 1e-9,
		},
		{
			name: "Bangkok to Chiang Mai",
			lat1: 13.7563, lon1: 100.5018,
			lat2: 18.7883, lon2: 98.9853,
			expected:  580,
			tolerance: 10,
		},
		{
			name: "Short hop within a city",
			lat1: 13.7563, lon1: 100.5018,
			lat2: 13.7650, lon2: 100.5380,
			expected:  4.03,
			tolerance: 0.1,
		},
		{
			name: "Across the equator",
			lat1: 1.0, lon1: 103.0,
			lat2: -1.0, lon2: 103.0,
			expected:  222.4,
			tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := Distance(13.75, 100.50, 14.00, 101.00)
	d2 := Distance(14.00, 101.00, 13.75, 100.50)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestProjectCollection(t *testing.T) {
	projects := []*models.Project{
		{ID: "P1", Name: "Riverside Park", Latitude: 13.75, Longitude: 100.50, Distance: 1.2},
		{ID: "P2", Name: "Garden Ville", Latitude: 13.80, Longitude: 100.55},
	}

	fc := ProjectCollection(projects)
	assert.Len(t, fc.Features, 2)
	assert.Equal(t, "P1", fc.Features[0].ID)
	assert.Equal(t, 100.50, fc.Features[0].Point().Lon())
	assert.Equal(t, 13.75, fc.Features[0].Point().Lat())
	assert.Equal(t, "Riverside Park", fc.Features[0].Properties["name"])
}
