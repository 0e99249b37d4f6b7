package grid

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"

	"github.com/pdok/fishnet/mathhelp"
)

// AlignedExtent is the smallest tile-aligned rectangle that fully covers some
// input bounds, plus the number of tiles that fit in it. It only lives for
// the duration of one generation run.
type AlignedExtent struct {
	geom.Extent
	NCols int
	NRows int
}

// Snap grows bounds outward to the tile lattice anchored at the grid origin:
// minimums snap down to the nearest tile edge at or below, maximums snap up.
// Snapping an already aligned extent returns it unchanged.
func (s Spec) Snap(bounds geom.Extent) (AlignedExtent, error) {
	if err := validateBounds(bounds); err != nil {
		return AlignedExtent{}, err
	}
	sxmin := snapDown(bounds.MinX(), s.OriginX, s.TileSize)
	symin := snapDown(bounds.MinY(), s.OriginY, s.TileSize)
	sxmax := snapUp(bounds.MaxX(), s.OriginX, s.TileSize)
	symax := snapUp(bounds.MaxY(), s.OriginY, s.TileSize)
	return AlignedExtent{
		Extent: geom.Extent{sxmin, symin, sxmax, symax},
		// Exact integers by construction, round only settles floating point noise.
		NCols: int(math.Round((sxmax - sxmin) / s.TileSize)),
		NRows: int(math.Round((symax - symin) / s.TileSize)),
	}, nil
}

func snapDown(value, origin, size float64) float64 {
	return origin + math.Floor((value-origin)/size)*size
}

func snapUp(value, origin, size float64) float64 {
	return origin + math.Ceil((value-origin)/size)*size
}

func validateBounds(bounds geom.Extent) error {
	for _, ord := range bounds {
		if !mathhelp.IsFinite(ord) {
			return fmt.Errorf("%w: not finite: %v", ErrInvalidBounds, bounds)
		}
	}
	if bounds.MaxX() < bounds.MinX() || bounds.MaxY() < bounds.MinY() {
		return fmt.Errorf("%w: inverted: %v", ErrInvalidBounds, bounds)
	}
	return nil
}
