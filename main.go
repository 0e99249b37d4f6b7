package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/carlmjohnson/versioninfo"

	"github.com/go-spatial/geom"
	"github.com/schollz/progressbar/v3"

	"github.com/pdok/fishnet/footprint"
	"github.com/pdok/fishnet/grid"
	"github.com/pdok/fishnet/processing"
	"github.com/pdok/fishnet/srs"

	"github.com/iancoleman/strcase"
	"github.com/pdok/fishnet/processing/gpkg"
	"github.com/urfave/cli/v2"
)

const BOUNDARY string = `boundary`
const LAYER string = `layer`
const TARGET string = `targetGpkg`
const TABLE string = `table`
const TILESIZE string = `tileSize`
const RESOLUTION string = `resolution`
const ORIGINX string = `originX`
const ORIGINY string = `originY`
const SRS string = `srs`
const BUFFERMILES string = `bufferMiles`
const NOCLIP string = `noClip`
const OVERWRITE string = `overwrite`
const PAGESIZE string = `pagesize`

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "fishnet"
	app.Usage = "A Golang fishnet grid generator"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     BOUNDARY,
			Aliases:  []string{"b"},
			Usage:    "Boundary file (GPKG or GeoJSON) the fishnet is generated around",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(BOUNDARY)},
		},
		&cli.StringFlag{
			Name:     LAYER,
			Aliases:  []string{"l"},
			Usage:    "Geometry table holding the boundary, when the boundary GPKG has more than one",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(LAYER)},
		},
		&cli.StringFlag{
			Name:     TARGET,
			Aliases:  []string{"t"},
			Usage:    "Target GPKG",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(TARGET)},
		},
		&cli.StringFlag{
			Name:     TABLE,
			Usage:    "Name of the tile table in the target GPKG",
			Value:    "tiles",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(TABLE)},
		},
		&cli.Float64Flag{
			Name:     TILESIZE,
			Usage:    "Tile edge length in the linear unit of the srs",
			Value:    98304,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(TILESIZE)},
		},
		&cli.Float64Flag{
			Name:     RESOLUTION,
			Aliases:  []string{"r"},
			Usage:    "Raster cell size in the linear unit of the srs. The pixels per tile must divide into storage blocks",
			Value:    32,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(RESOLUTION)},
		},
		&cli.Float64Flag{
			Name:     ORIGINX,
			Usage:    "X of the grid origin the tiles are anchored to",
			Value:    0,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(ORIGINX)},
		},
		&cli.Float64Flag{
			Name:     ORIGINY,
			Usage:    "Y of the grid origin the tiles are anchored to",
			Value:    0,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(ORIGINY)},
		},
		&cli.StringFlag{
			Name:     SRS,
			Usage:    `ID of a built-in spatial reference system or path to a definition file. E.g.: ` + srs.USAContiguousAlbersUSGSFoot,
			Value:    srs.USAContiguousAlbersUSGSFoot,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(SRS)},
		},
		&cli.Float64Flag{
			Name:     BUFFERMILES,
			Usage:    "Buffer distance around the boundary, in statute miles",
			Value:    10,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(BUFFERMILES)},
		},
		&cli.BoolFlag{
			Name:     NOCLIP,
			Usage:    "Keep every tile of the rectangle covering the buffered boundary instead of only the intersecting ones",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(NOCLIP)},
		},
		&cli.BoolFlag{
			Name:     OVERWRITE,
			Aliases:  []string{"o"},
			Usage:    "Overwrite the target GPKG if it exists",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(OVERWRITE)},
		},
		&cli.IntFlag{
			Name:     PAGESIZE,
			Aliases:  []string{"p"},
			Usage:    "Page Size, how many tiles are written per transaction to the target GPKG",
			Value:    1000,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(PAGESIZE)},
		},
	}

	app.Action = func(c *cli.Context) error {
		system, err := srs.LoadSRS(c.String(SRS))
		if err != nil {
			return err
		}
		spec, err := grid.NewSpec(c.Float64(TILESIZE), c.Float64(RESOLUTION), c.Float64(ORIGINX), c.Float64(ORIGINY))
		if err != nil {
			return err
		}

		_, err = os.Stat(c.String(BOUNDARY))
		if os.IsNotExist(err) {
			log.Fatalf("error opening boundary file: %s", err)
		}
		boundary, err := footprint.Load(c.String(BOUNDARY), c.String(LAYER))
		if err != nil {
			return err
		}
		if boundary.SRSID() == 0 {
			log.Printf("the boundary carries no srs id, trusting it to be in %s", system.Name)
		} else if boundary.SRSID() != system.ID {
			return fmt.Errorf("the boundary is in srs_id %d but the fishnet would be generated in %s (srs_id %d), reproject the boundary first",
				boundary.SRSID(), system.Name, system.ID)
		}

		target := initGPKGTarget(c.String(TARGET), c.Bool(OVERWRITE), c.Int(PAGESIZE))
		defer target.Close()
		err = target.CreateTileTable(c.String(TABLE), system.AsGpkgSRS())
		if err != nil {
			log.Fatalf("error initializing the target GeoPackage: %s", err)
		}

		log.Println("=== start fishnet ===")
		log.Printf("  tile size %v, resolution %v, %d pixels per tile", spec.TileSize, spec.Resolution, spec.PixelsPerTile())

		bufferMiles := c.Float64(BUFFERMILES)
		bufferDistance := system.MilesToUnits(bufferMiles)
		log.Printf("  boundary of %d polygons, buffered by %v miles (%v units)", len(boundary.Polygons()), bufferMiles, bufferDistance)

		tiles, err := grid.Generate(spec, boundary.BufferedExtent(bufferDistance))
		if err != nil {
			return err
		}
		log.Printf("  %d tiles cover the buffered boundary", len(tiles))

		if !c.Bool(NOCLIP) {
			tiles = grid.Clip(tiles, func(extent geom.Extent) bool {
				return boundary.IntersectsBuffered(extent, bufferDistance)
			})
			log.Printf("  %d tiles left after clipping", len(tiles))
		}

		tileSet, err := grid.NewTileSet(tiles)
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(tileSet.Len()), "writing")
		processing.ProcessTiles(processing.NewTileSource(tileSet.Tiles(), bufferMiles), target, bar)

		log.Println("=== done fishnet ===")
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func initGPKGTarget(targetPath string, overwrite bool, pagesize int) *gpkg.TargetGeopackage {
	if overwrite {
		err := os.Remove(targetPath)
		var pathError *os.PathError
		if err != nil {
			if !(errors.As(err, &pathError) && errors.Is(pathError.Err, syscall.ENOENT)) {
				log.Fatalf("could not remove target file: %e", err)
			}
		}
	}
	target := gpkg.TargetGeopackage{}
	target.Init(targetPath, pagesize)
	return &target
}
