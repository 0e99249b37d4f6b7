package grid

import "github.com/go-spatial/geom"

// Tile is one fishnet cell. Tiles are plain values: generated once, never
// mutated, holding no references to each other. The Spec parameters are
// copied in so a tile record is traceable on its own.
type Tile struct {
	TileID     string
	Col        int
	Row        int
	XMin       float64
	YMin       float64
	XMax       float64
	YMax       float64
	TileSize   float64
	Resolution float64
	OriginX    float64
	OriginY    float64
}

func (t Tile) Extent() geom.Extent {
	return geom.Extent{t.XMin, t.YMin, t.XMax, t.YMax}
}

// Polygon returns the tile as a closed rectangular ring, counterclockwise
// from the lower left corner.
func (t Tile) Polygon() geom.Polygon {
	return geom.Polygon{{
		{t.XMin, t.YMin},
		{t.XMax, t.YMin},
		{t.XMax, t.YMax},
		{t.XMin, t.YMax},
		{t.XMin, t.YMin},
	}}
}
