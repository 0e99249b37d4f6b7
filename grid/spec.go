// Package grid generates origin-anchored fishnet grids: regular rectangular
// tilings of a region, with fixed-width tile ids that stay stable when the
// covered region grows.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/pdok/fishnet/mathhelp"
)

const (
	// Pixel counts per tile edge must divide into these block sizes so
	// downstream rasters can be stored in aligned blocks.
	rasterBlockSize    = 512
	rasterSubBlockSize = 16

	// Tolerance on the pixel count being a whole number, to allow for
	// floating point rounding in tileSize / resolution.
	pixelCountTolerance = 1e-9

	// MaxIndexMagnitude is the largest column or row magnitude that fits the
	// signed 7 digit field in a tile id.
	MaxIndexMagnitude = 9999999
)

var (
	ErrInvalidResolution    = errors.New("invalid tile size / resolution combination")
	ErrNonIntegerPixelCount = fmt.Errorf("%w: pixels per tile is not a whole number", ErrInvalidResolution)
	ErrBlockMisalignment    = fmt.Errorf("%w: pixels per tile is not block aligned", ErrInvalidResolution)
	ErrInvalidBounds        = errors.New("invalid bounds")
	ErrIndexOutOfRange      = errors.New("column or row does not fit the tile id format")
)

// Spec holds the parameters of one fishnet grid, in the linear unit of the
// coordinate system the caller works in. Construct with NewSpec so invalid
// combinations are rejected before any tile is produced.
type Spec struct {
	TileSize   float64 `json:"tileSize" validate:"required,gt=0"`
	Resolution float64 `json:"resolution" validate:"required,gt=0"`
	OriginX    float64 `json:"originX"`
	OriginY    float64 `json:"originY"`
}

func NewSpec(tileSize, resolution, originX, originY float64) (Spec, error) {
	spec := Spec{
		TileSize:   tileSize,
		Resolution: resolution,
		OriginX:    originX,
		OriginY:    originY,
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(spec); err != nil {
		return Spec{}, err
	}
	for _, f := range []float64{tileSize, resolution, originX, originY} {
		if !mathhelp.IsFinite(f) {
			return Spec{}, fmt.Errorf("grid spec values must be finite, got %v", spec)
		}
	}
	if err := ValidateResolution(tileSize, resolution); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// ValidateResolution checks that tileSize divided by resolution yields a
// whole pixel count divisible by both block sizes.
func ValidateResolution(tileSize, resolution float64) error {
	pixels := tileSize / resolution
	if !mathhelp.AlmostInt(pixels, pixelCountTolerance) {
		return fmt.Errorf("%w: %v / %v = %v", ErrNonIntegerPixelCount, tileSize, resolution, pixels)
	}
	wholePixels := int(math.Round(pixels))
	if wholePixels%rasterBlockSize != 0 {
		return fmt.Errorf("%w: %d pixels is not a multiple of %d", ErrBlockMisalignment, wholePixels, rasterBlockSize)
	}
	if wholePixels%rasterSubBlockSize != 0 {
		return fmt.Errorf("%w: %d pixels is not a multiple of %d", ErrBlockMisalignment, wholePixels, rasterSubBlockSize)
	}
	return nil
}

// PixelsPerTile returns the raster pixel count along one tile edge.
func (s Spec) PixelsPerTile() int {
	return int(math.Round(s.TileSize / s.Resolution))
}

// Index returns the origin-anchored column and row of the tile whose
// lower-left corner is (x0, y0). Floor division, not truncation: a corner
// exactly on a tile edge belongs to the tile starting there, also for
// negative coordinates.
func (s Spec) Index(x0, y0 float64) (col, row int) {
	col = int(math.Floor((x0 - s.OriginX) / s.TileSize))
	row = int(math.Floor((y0 - s.OriginY) / s.TileSize))
	return col, row
}

// TileID renders the canonical tile id, e.g. T98304_R32_C-0000001_R-0000001.
// The fixed width and mandatory sign make ids within one grid sort
// lexicographically in (col, row) order as long as the indices share a sign.
func (s Spec) TileID(col, row int) (string, error) {
	if !mathhelp.BetweenInc(col, -MaxIndexMagnitude, MaxIndexMagnitude) {
		return "", fmt.Errorf("%w: col %d", ErrIndexOutOfRange, col)
	}
	if !mathhelp.BetweenInc(row, -MaxIndexMagnitude, MaxIndexMagnitude) {
		return "", fmt.Errorf("%w: row %d", ErrIndexOutOfRange, row)
	}
	return fmt.Sprintf("T%d_R%d_C%+08d_R%+08d",
		int(math.Round(s.TileSize)), int(math.Round(s.Resolution)), col, row), nil
}
