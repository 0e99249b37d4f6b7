// Package footprint loads the boundary geometry a fishnet is clipped against
// and answers the intersection queries for it. The boundary is treated as a
// collection of polygons, there is no need to dissolve them first.
package footprint

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/planar"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pdok/fishnet/geomhelp"
	processinggpkg "github.com/pdok/fishnet/processing/gpkg"
)

type Footprint struct {
	polygons []geom.Polygon
	// bounding boxes of the polygons, for cheap rejects
	polygonExtents []geom.Extent
	extent         geom.Extent
	// srsID is 0 when the source format does not carry one
	srsID int
}

// Load reads a boundary from a geopackage or a geojson file. layer selects
// the table in a geopackage with more than one geometry table, it is ignored
// for geojson.
func Load(path, layer string) (*Footprint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpkg":
		return loadGeopackage(path, layer)
	case ".json", ".geojson":
		return loadGeoJSON(path)
	default:
		return nil, fmt.Errorf("unsupported boundary format %q, expected a .gpkg, .json or .geojson file", path)
	}
}

func loadGeopackage(path, layer string) (*Footprint, error) {
	source := processinggpkg.SourceGeopackage{}
	source.Init(path)
	defer source.Close()

	tables := source.BoundaryTables()
	table, err := selectBoundaryTable(tables, layer)
	if err != nil {
		return nil, err
	}
	return newFootprint(source.ReadPolygons(table), table.SRSID)
}

func selectBoundaryTable(tables []processinggpkg.BoundaryTable, layer string) (processinggpkg.BoundaryTable, error) {
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		if table.Name == layer {
			return table, nil
		}
		names = append(names, table.Name)
	}
	if layer != "" {
		return processinggpkg.BoundaryTable{}, fmt.Errorf("no geometry table %q in the boundary geopackage, found: %v", layer, names)
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	return processinggpkg.BoundaryTable{}, fmt.Errorf("the boundary geopackage has %d geometry tables, select one with --layer: %v", len(tables), names)
}

// loadGeoJSON accepts a FeatureCollection, a single Feature or a bare
// geometry. GeoJSON carries no usable srs, the coordinates are trusted to be
// in the system the fishnet is generated in.
func loadGeoJSON(path string) (*Footprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var geometries []orb.Geometry
	if collection, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, feature := range collection.Features {
			geometries = append(geometries, feature.Geometry)
		}
	} else if feature, err := geojson.UnmarshalFeature(data); err == nil {
		geometries = append(geometries, feature.Geometry)
	} else if geometry, err := geojson.UnmarshalGeometry(data); err == nil {
		geometries = append(geometries, geometry.Geometry())
	} else {
		return nil, fmt.Errorf("%q is not a geojson feature collection, feature or geometry", path)
	}

	var polygons []geom.Polygon
	for _, geometry := range geometries {
		polygons, err = appendOrbPolygons(polygons, geometry)
		if err != nil {
			return nil, err
		}
	}
	return newFootprint(polygons, 0)
}

func appendOrbPolygons(polygons []geom.Polygon, geometry orb.Geometry) ([]geom.Polygon, error) {
	switch g := geometry.(type) {
	case orb.Polygon:
		return append(polygons, orbToGeomPolygon(g)), nil
	case orb.MultiPolygon:
		for _, polygon := range g {
			polygons = append(polygons, orbToGeomPolygon(polygon))
		}
		return polygons, nil
	case orb.Collection:
		var err error
		for _, member := range g {
			polygons, err = appendOrbPolygons(polygons, member)
			if err != nil {
				return nil, err
			}
		}
		return polygons, nil
	default:
		return nil, fmt.Errorf("boundary geometries must be polygons, got a %s", geometry.GeoJSONType())
	}
}

func orbToGeomPolygon(orbPolygon orb.Polygon) geom.Polygon {
	polygon := make(geom.Polygon, 0, len(orbPolygon))
	for _, orbRing := range orbPolygon {
		ring := make([][2]float64, 0, len(orbRing))
		for _, pt := range orbRing {
			ring = append(ring, [2]float64{pt[0], pt[1]})
		}
		polygon = append(polygon, ring)
	}
	return polygon
}

func newFootprint(polygons []geom.Polygon, srsID int) (*Footprint, error) {
	if len(polygons) == 0 {
		return nil, fmt.Errorf("the boundary contains no polygons")
	}
	footprint := Footprint{
		polygons:       polygons,
		polygonExtents: make([]geom.Extent, 0, len(polygons)),
		srsID:          srsID,
	}
	var extent *geom.Extent
	for _, polygon := range polygons {
		polygonExtent, err := geom.NewExtentFromGeometry(polygon)
		if err != nil {
			return nil, fmt.Errorf("could not take the extent of boundary polygon %s: %w", geomhelp.WktMustEncode(polygon, 100), err)
		}
		footprint.polygonExtents = append(footprint.polygonExtents, *polygonExtent)
		if extent == nil {
			extent = polygonExtent
		} else if err = extent.AddGeometry(polygon); err != nil {
			return nil, err
		}
	}
	footprint.extent = *extent
	return &footprint, nil
}

func (footprint *Footprint) Polygons() []geom.Polygon {
	return footprint.polygons
}

// Extent returns the bounding box around all boundary polygons.
func (footprint *Footprint) Extent() geom.Extent {
	return footprint.extent
}

// BufferedExtent grows the bounding box outward by distance on every side.
func (footprint *Footprint) BufferedExtent(distance float64) geom.Extent {
	return geom.Extent{
		footprint.extent.MinX() - distance,
		footprint.extent.MinY() - distance,
		footprint.extent.MaxX() + distance,
		footprint.extent.MaxY() + distance,
	}
}

// SRSID returns the srs the boundary declared, 0 when it declared none.
func (footprint *Footprint) SRSID() int {
	return footprint.srsID
}

// Intersects reports whether the boundary and the rectangle share at least
// one point. Touching edges count.
func (footprint *Footprint) Intersects(rect geom.Extent) bool {
	for i, polygon := range footprint.polygons {
		if !extentsOverlap(footprint.polygonExtents[i], rect) {
			continue
		}
		if polygonIntersectsRect(polygon, rect) {
			return true
		}
	}
	return false
}

// IntersectsBuffered reports whether the boundary buffered outward by
// distance intersects the rectangle. The buffer is not materialized, tiles
// within distance of any boundary polygon intersect by definition.
func (footprint *Footprint) IntersectsBuffered(rect geom.Extent, distance float64) bool {
	if distance <= 0 {
		return footprint.Intersects(rect)
	}
	for i, polygon := range footprint.polygons {
		buffered := geom.Extent{
			footprint.polygonExtents[i].MinX() - distance,
			footprint.polygonExtents[i].MinY() - distance,
			footprint.polygonExtents[i].MaxX() + distance,
			footprint.polygonExtents[i].MaxY() + distance,
		}
		if !extentsOverlap(buffered, rect) {
			continue
		}
		if polygonIntersectsRect(polygon, rect) {
			return true
		}
		if polygonRectDistance(polygon, rect) <= distance {
			return true
		}
	}
	return false
}

func extentsOverlap(a, b geom.Extent) bool {
	return a.MinX() <= b.MaxX() && b.MinX() <= a.MaxX() &&
		a.MinY() <= b.MaxY() && b.MinY() <= a.MaxY()
}

func polygonIntersectsRect(polygon geom.Polygon, rect geom.Extent) bool {
	// First see if a vertex is inside (cheap test).
	for _, ring := range polygon.LinearRings() {
		for _, vertex := range ring {
			pt := geom.Point(vertex)
			if rect.ContainsPoint(&pt) {
				return true
			}
		}
	}
	for _, corner := range rectCorners(rect) {
		if geomhelp.PolygonContains(polygon, corner) {
			return true
		}
	}
	for _, ring := range polygon.LinearRings() {
		for _, edge := range ringEdges(ring) {
			for _, rectEdge := range rect.Edges(nil) {
				if _, intersects := planar.SegmentIntersect(edge, rectEdge); intersects {
					return true
				}
			}
		}
	}
	return false
}

// polygonRectDistance returns the distance between the polygon boundary and
// the rectangle. The minimum is always attained at a vertex of one of the
// two, so testing vertices against the opposite edges is exact.
func polygonRectDistance(polygon geom.Polygon, rect geom.Extent) float64 {
	dist := math.Inf(1)
	corners := rectCorners(rect)
	for _, ring := range polygon.LinearRings() {
		for _, vertex := range ring {
			dist = math.Min(dist, geomhelp.DistPointToExtent(vertex, &rect))
		}
		for _, edge := range ringEdges(ring) {
			for _, corner := range corners {
				dist = math.Min(dist, geomhelp.DistPointToSegment(corner, edge))
			}
		}
	}
	return dist
}

func rectCorners(rect geom.Extent) [4][2]float64 {
	return [4][2]float64{
		{rect.MinX(), rect.MinY()},
		{rect.MaxX(), rect.MinY()},
		{rect.MaxX(), rect.MaxY()},
		{rect.MinX(), rect.MaxY()},
	}
}

// ringEdges walks the ring whether or not it has an explicit closing vertex,
// skipping the degenerate closing edge if it has.
func ringEdges(ring [][2]float64) []geom.Line {
	if len(ring) < 2 {
		return nil
	}
	last := len(ring) - 1
	if ring[0] == ring[last] {
		last--
	}
	edges := make([]geom.Line, 0, last+1)
	for i := 0; i <= last; i++ {
		next := i + 1
		if next > last {
			next = 0
		}
		edges = append(edges, geom.Line{ring[i], ring[next]})
	}
	return edges
}
