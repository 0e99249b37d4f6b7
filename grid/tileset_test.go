package grid

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTileSet(t *testing.T) {
	spec, err := NewSpec(98304, 32, 0, 0)
	require.NoError(t, err)
	tiles, err := Generate(spec, geom.Extent{-10000, -10000, 100000, 100000})
	require.NoError(t, err)

	tileSet, err := NewTileSet(tiles)
	require.NoError(t, err)
	assert.Equal(t, 9, tileSet.Len())

	wantIDs := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		wantIDs = append(wantIDs, tile.TileID)
	}
	assert.Equal(t, wantIDs, tileSet.IDs())
	assert.Equal(t, tiles, tileSet.Tiles())

	tile, ok := tileSet.Get("T98304_R32_C-0000001_R-0000001")
	require.True(t, ok)
	assert.Equal(t, tiles[0], tile)

	_, ok = tileSet.Get("T98304_R32_C+0000002_R+0000000")
	assert.False(t, ok)
}

func TestNewTileSet_DuplicateID(t *testing.T) {
	tile := Tile{TileID: "T98304_R32_C+0000000_R+0000000"}
	_, err := NewTileSet([]Tile{tile, tile})
	require.ErrorContains(t, err, "duplicate tile id")
}

func TestNewTileSet_Empty(t *testing.T) {
	tileSet, err := NewTileSet(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tileSet.Len())
	assert.Empty(t, tileSet.Tiles())
}
