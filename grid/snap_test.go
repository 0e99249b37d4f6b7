package grid

import (
	"math"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_Snap(t *testing.T) {
	type want struct {
		extent geom.Extent
		ncols  int
		nrows  int
	}
	tests := []struct {
		name   string
		spec   Spec
		bounds geom.Extent
		want   want
	}{
		{name: "grows outward to the lattice",
			spec:   Spec{TileSize: 98304, Resolution: 32},
			bounds: geom.Extent{-10000, -10000, 100000, 100000},
			want:   want{geom.Extent{-98304, -98304, 196608, 196608}, 3, 3}},
		{name: "aligned bounds stay put",
			spec:   Spec{TileSize: 98304, Resolution: 32},
			bounds: geom.Extent{-98304, 0, 0, 98304},
			want:   want{geom.Extent{-98304, 0, 0, 98304}, 1, 1}},
		{name: "point on the lattice snaps to itself",
			spec:   Spec{TileSize: 98304, Resolution: 32},
			bounds: geom.Extent{0, 0, 0, 0},
			want:   want{geom.Extent{0, 0, 0, 0}, 0, 0}},
		{name: "shifted origin anchors the lattice",
			spec:   Spec{TileSize: 100, Resolution: 1, OriginX: 50, OriginY: -25},
			bounds: geom.Extent{0, 0, 10, 10},
			want:   want{geom.Extent{-50, -25, 50, 75}, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aligned, err := tt.spec.Snap(tt.bounds)
			require.NoError(t, err)
			assert.Equal(t, tt.want.extent, aligned.Extent)
			assert.Equal(t, tt.want.ncols, aligned.NCols)
			assert.Equal(t, tt.want.nrows, aligned.NRows)
		})
	}
}

func TestSpec_SnapCovers(t *testing.T) {
	spec := Spec{TileSize: 512, Resolution: 1, OriginX: 3.5, OriginY: -7.25}
	bounds := geom.Extent{-1234.5, 678.9, 10000.1, 20000.2}

	aligned, err := spec.Snap(bounds)
	require.NoError(t, err)

	assert.LessOrEqual(t, aligned.MinX(), bounds.MinX())
	assert.LessOrEqual(t, aligned.MinY(), bounds.MinY())
	assert.GreaterOrEqual(t, aligned.MaxX(), bounds.MaxX())
	assert.GreaterOrEqual(t, aligned.MaxY(), bounds.MaxY())

	// snapping again must be a no-op
	realigned, err := spec.Snap(aligned.Extent)
	require.NoError(t, err)
	assert.Equal(t, aligned, realigned)
}

func TestSpec_SnapInvalidBounds(t *testing.T) {
	spec := Spec{TileSize: 98304, Resolution: 32}
	tests := []struct {
		name   string
		bounds geom.Extent
	}{
		{name: "inverted x", bounds: geom.Extent{100, 0, -100, 10}},
		{name: "inverted y", bounds: geom.Extent{0, 100, 10, -100}},
		{name: "nan", bounds: geom.Extent{math.NaN(), 0, 10, 10}},
		{name: "infinite", bounds: geom.Extent{0, 0, math.Inf(1), 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spec.Snap(tt.bounds)
			require.ErrorIs(t, err, ErrInvalidBounds)
		})
	}
}
