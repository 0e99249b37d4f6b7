package geomhelp

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// from paulmach/orb
// Original implementation: http://rosettacode.org/wiki/Ray-casting_algorithm#Go
//
//nolint:cyclop,nestif
func RayIntersect(pt, start, end [2]float64) (intersects, on bool) {
	if start[0] > end[0] {
		start, end = end, start
	}

	if pt[0] == start[0] {
		if pt[1] == start[1] {
			// pt == start
			return false, true
		} else if start[0] == end[0] {
			// vertical segment (start -> end)
			// return true if within the line, check to see if start or end is greater.
			if start[1] > end[1] && start[1] >= pt[1] && pt[1] >= end[1] {
				return false, true
			}

			if end[1] > start[1] && end[1] >= pt[1] && pt[1] >= start[1] {
				return false, true
			}
		}

		// Move the y coordinate to deal with degenerate case
		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	} else if pt[0] == end[0] {
		if pt[1] == end[1] {
			// matching the end point
			return false, true
		}

		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	}

	if pt[0] < start[0] || pt[0] > end[0] {
		return false, false
	}

	if start[1] > end[1] {
		if pt[1] > start[1] {
			return false, false
		} else if pt[1] < end[1] {
			return true, false
		}
	} else {
		if pt[1] > end[1] {
			return false, false
		} else if pt[1] < start[1] {
			return true, false
		}
	}

	rs := (pt[1] - start[1]) / (pt[0] - start[0])
	ds := (end[1] - start[1]) / (end[0] - start[0])

	if rs == ds {
		return false, true
	}

	return rs <= ds, false
}

// RingContains casts a ray from pt and counts ring edge crossings.
// The ring may or may not have an explicit closing vertex.
func RingContains(ring [][2]float64, pt [2]float64) (inside, on bool) {
	if len(ring) < 3 {
		return false, false
	}
	last := len(ring) - 1
	if ring[0] == ring[last] {
		last--
	}
	if last < 2 {
		return false, false
	}
	prev := ring[last]
	for i := 0; i <= last; i++ {
		intersects, onEdge := RayIntersect(pt, prev, ring[i])
		if onEdge {
			return false, true
		}
		if intersects {
			inside = !inside
		}
		prev = ring[i]
	}
	return inside, false
}

// PolygonContains treats the polygon as a closed region: points on the
// outer ring or on a hole ring count as contained.
func PolygonContains(polygon geom.Polygon, pt [2]float64) bool {
	rings := polygon.LinearRings()
	if len(rings) == 0 {
		return false
	}
	inside, on := RingContains(rings[0], pt)
	if on {
		return true
	}
	if !inside {
		return false
	}
	for _, hole := range rings[1:] {
		holeInside, holeOn := RingContains(hole, pt)
		if holeOn {
			return true
		}
		if holeInside {
			return false
		}
	}
	return true
}

func DistPointToSegment(pt [2]float64, segment geom.Line) float64 {
	dx := segment[1][0] - segment[0][0]
	dy := segment[1][1] - segment[0][1]
	if dx == 0 && dy == 0 {
		return math.Hypot(pt[0]-segment[0][0], pt[1]-segment[0][1])
	}
	t := ((pt[0]-segment[0][0])*dx + (pt[1]-segment[0][1])*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(pt[0]-(segment[0][0]+t*dx), pt[1]-(segment[0][1]+t*dy))
}

// DistPointToExtent is 0 for points inside or on the extent.
func DistPointToExtent(pt [2]float64, extent *geom.Extent) float64 {
	dx := math.Max(math.Max(extent.MinX()-pt[0], 0), pt[0]-extent.MaxX())
	dy := math.Max(math.Max(extent.MinY()-pt[1], 0), pt[1]-extent.MaxY())
	return math.Hypot(dx, dy)
}

func WktMustEncode(g geom.Geometry, maxLen uint) string {
	if maxLen == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), maxLen, "...")
}
