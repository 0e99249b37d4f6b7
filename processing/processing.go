// Package processing takes care of the logistics around streaming tiles to a
// Target. Not the tiling itself.
package processing

import (
	"log"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/go-spatial/geom"

	"github.com/pdok/fishnet/grid"
)

// TileFeature adapts one tile to the feature a Target writes. Columns()
// follows the column order of a tile table.
type TileFeature struct {
	Tile        grid.Tile
	BufferMiles float64
}

func (f *TileFeature) Columns() []interface{} {
	return []interface{}{
		f.Tile.TileID,
		f.Tile.Col,
		f.Tile.Row,
		f.Tile.XMin,
		f.Tile.YMin,
		f.Tile.XMax,
		f.Tile.YMax,
		f.Tile.TileSize,
		f.Tile.Resolution,
		f.Tile.OriginX,
		f.Tile.OriginY,
		f.BufferMiles,
	}
}

func (f *TileFeature) Geometry() geom.Geometry {
	return f.Tile.Polygon()
}

// TileSource streams an already generated, already clipped set of tiles.
type TileSource struct {
	tiles       []grid.Tile
	bufferMiles float64
}

func NewTileSource(tiles []grid.Tile, bufferMiles float64) *TileSource {
	return &TileSource{tiles: tiles, bufferMiles: bufferMiles}
}

func (source *TileSource) ReadFeatures(features chan<- Feature) {
	for _, tile := range source.tiles {
		features <- &TileFeature{Tile: tile, BufferMiles: source.bufferMiles}
	}
	close(features)
}

// readFeaturesFromSource pulls the features out of the source
func readFeaturesFromSource(source Source, features chan<- Feature) {
	source.ReadFeatures(features)
}

// trackFeatures passes the features through while keeping the progress
// administration
func trackFeatures(featuresIn <-chan Feature, featuresOut chan<- Feature, bar *progressbar.ProgressBar) {
	var count uint64
	for {
		feature, hasMore := <-featuresIn
		if !hasMore {
			break
		}
		count++
		featuresOut <- feature
		_ = bar.Add(1)
	}
	close(featuresOut)

	log.Printf("    tiles streamed: %d", count)
}

// ProcessTiles streams every feature from the source into the target and
// returns when the target is done writing.
func ProcessTiles(source Source, target Target, bar *progressbar.ProgressBar) {
	featuresBefore := make(chan Feature)
	featuresAfter := make(chan Feature)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		target.WriteFeatures(featuresAfter)
	}()
	go trackFeatures(featuresBefore, featuresAfter, bar)
	go readFeaturesFromSource(source, featuresBefore)

	wg.Wait()
}
