package grid

import (
	"github.com/go-spatial/geom"
	"github.com/umpc/go-sortedmap"

	"github.com/pdok/fishnet/mapslicehelp"
)

// IntersectsFunc decides whether a tile extent intersects some boundary
// geometry. Implementations live outside this package, see footprint.
type IntersectsFunc func(geom.Extent) bool

// Generate materializes every tile of the aligned rectangle covering bounds,
// row-major: ascending row, then ascending column within a row. Output is
// deterministic for identical inputs. Generation fails as a whole when a
// tile index would not fit the id format.
func Generate(spec Spec, bounds geom.Extent) ([]Tile, error) {
	if _, err := NewSpec(spec.TileSize, spec.Resolution, spec.OriginX, spec.OriginY); err != nil {
		return nil, err
	}
	aligned, err := spec.Snap(bounds)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, 0, aligned.NCols*aligned.NRows)
	for r := 0; r < aligned.NRows; r++ {
		for c := 0; c < aligned.NCols; c++ {
			x0 := aligned.MinX() + float64(c)*spec.TileSize
			y0 := aligned.MinY() + float64(r)*spec.TileSize
			col, row := spec.Index(x0, y0)
			tileID, err := spec.TileID(col, row)
			if err != nil {
				return nil, err
			}
			tiles = append(tiles, Tile{
				TileID:     tileID,
				Col:        col,
				Row:        row,
				XMin:       x0,
				YMin:       y0,
				XMax:       x0 + spec.TileSize,
				YMax:       y0 + spec.TileSize,
				TileSize:   spec.TileSize,
				Resolution: spec.Resolution,
				OriginX:    spec.OriginX,
				OriginY:    spec.OriginY,
			})
		}
	}
	return tiles, nil
}

// Clip keeps the tiles whose extent satisfies intersects. It is a pure
// filter: surviving tiles and their relative order are untouched.
func Clip(tiles []Tile, intersects IntersectsFunc) []Tile {
	// runs of consecutive excluded tiles, keyed by the id starting each run
	sequencesToRemove := sortedmap.New(len(tiles), func(x, y interface{}) bool {
		return x.([2]int)[0] < y.([2]int)[0]
	})
	runStart := -1
	for i, tile := range tiles {
		if intersects(tile.Extent()) {
			if runStart >= 0 {
				sequencesToRemove.Insert(tiles[runStart].TileID, [2]int{runStart, i})
				runStart = -1
			}
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}
	if runStart >= 0 {
		sequencesToRemove.Insert(tiles[runStart].TileID, [2]int{runStart, len(tiles)})
	}
	return mapslicehelp.RemoveSequences(tiles, sequencesToRemove)
}
