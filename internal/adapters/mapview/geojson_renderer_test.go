package mapview

import (
	"testing"
	"traffic-forecast-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBuildsMarkersAndPath(t *testing.T) {
	start := domain.Coordinates{Lon: 78.1691, Lat: 26.2303}
	end := domain.Coordinates{Lon: 78.1980, Lat: 26.2110}
	path := []domain.Coordinates{start, {Lon: 78.18, Lat: 26.22}, end}

	view, err := NewGeoJSONRenderer().Render(start, end, path)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(view.GeoJSON)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, "start", fc.Features[0].Properties.MustString("role"))
	assert.Equal(t, orb.Point{78.1691, 26.2303}, fc.Features[0].Geometry)
	assert.Equal(t, "end", fc.Features[1].Properties.MustString("role"))

	line, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 3)
}

func TestRenderFallsBackToStraightLine(t *testing.T) {
	start := domain.Coordinates{Lon: 78.1691, Lat: 26.2303}
	end := domain.Coordinates{Lon: 78.1980, Lat: 26.2110}

	view, err := NewGeoJSONRenderer().Render(start, end, nil)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(view.GeoJSON)
	require.NoError(t, err)
	line, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{78.1691, 26.2303}, {78.1980, 26.2110}}, line)
}

func TestRenderRejectsInvalidEndpoints(t *testing.T) {
	_, err := NewGeoJSONRenderer().Render(domain.Coordinates{Lon: 500}, domain.Coordinates{}, nil)
	assert.Error(t, err)
}
