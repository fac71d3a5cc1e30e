package mapview

import (
	"errors"
	"fmt"
	"traffic-forecast-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONRenderer produces a FeatureCollection with the two endpoints as
// markers and the route as a line, ready for a Leaflet geoJSON layer.
type GeoJSONRenderer struct{}

func NewGeoJSONRenderer() *GeoJSONRenderer { return &GeoJSONRenderer{} }

func toPoint(c domain.Coordinates) orb.Point { return orb.Point{c.Lon, c.Lat} }

func (r *GeoJSONRenderer) Render(
	start domain.Coordinates,
	end domain.Coordinates,
	path []domain.Coordinates,
) (*domain.MapView, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("render map: start: %w", err)
	}
	if err := end.Validate(); err != nil {
		return nil, fmt.Errorf("render map: end: %w", err)
	}

	fc := geojson.NewFeatureCollection()

	startF := geojson.NewFeature(toPoint(start))
	startF.Properties["role"] = string(domain.RoleStart)
	fc.Append(startF)

	endF := geojson.NewFeature(toPoint(end))
	endF.Properties["role"] = string(domain.RoleEnd)
	fc.Append(endF)

	line := make(orb.LineString, 0, len(path))
	for _, c := range path {
		line = append(line, toPoint(c))
	}
	// A path needs two points; fall back to a straight segment.
	if len(line) < 2 {
		line = orb.LineString{toPoint(start), toPoint(end)}
	}

	pathF := geojson.NewFeature(line)
	pathF.Properties["role"] = "path"
	pathF.BBox = geojson.NewBBox(line.Bound().Union(orb.MultiPoint{toPoint(start), toPoint(end)}.Bound()))
	fc.Append(pathF)

	raw, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("render map: marshal: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("render map: empty output")
	}

	return &domain.MapView{GeoJSON: raw}, nil
}
