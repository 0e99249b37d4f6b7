package grid

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pdok/fishnet/mapslicehelp"
)

// TileSet indexes tiles by id, preserving generation order. Building one
// asserts the id uniqueness that the tile_id column in a target table relies
// on, before any row is written.
type TileSet struct {
	byID *orderedmap.OrderedMap[string, Tile]
}

func NewTileSet(tiles []Tile) (*TileSet, error) {
	byID := orderedmap.New[string, Tile](len(tiles))
	for _, tile := range tiles {
		if _, existed := byID.Set(tile.TileID, tile); existed {
			return nil, fmt.Errorf("duplicate tile id %s", tile.TileID)
		}
	}
	return &TileSet{byID: byID}, nil
}

func (ts *TileSet) Len() int {
	return ts.byID.Len()
}

func (ts *TileSet) Get(tileID string) (Tile, bool) {
	return ts.byID.Get(tileID)
}

// IDs returns the tile ids in generation order.
func (ts *TileSet) IDs() []string {
	return mapslicehelp.OrderedMapKeys(ts.byID)
}

// Tiles returns the tiles in generation order.
func (ts *TileSet) Tiles() []Tile {
	tiles := make([]Tile, 0, ts.byID.Len())
	for p := ts.byID.Oldest(); p != nil; p = p.Next() {
		tiles = append(tiles, p.Value)
	}
	return tiles
}
