package gpkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdok/fishnet/processing"
)

func TestTileTable_CreateSQL(t *testing.T) {
	query := TileTable{Name: "tiles"}.createSQL()
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "tiles"(`+
		`"fid" INTEGER PRIMARY KEY AUTOINCREMENT, `+
		`"tile_id" TEXT NOT NULL UNIQUE, `+
		`"col" INTEGER NOT NULL, `+
		`"row" INTEGER NOT NULL, `+
		`"xmin" REAL NOT NULL, `+
		`"ymin" REAL NOT NULL, `+
		`"xmax" REAL NOT NULL, `+
		`"ymax" REAL NOT NULL, `+
		`"tile_size" REAL NOT NULL, `+
		`"resolution" REAL NOT NULL, `+
		`"origin_x" REAL NOT NULL, `+
		`"origin_y" REAL NOT NULL, `+
		`"buffer_miles" REAL NOT NULL, `+
		`"geom" POLYGON);`, query)
}

func TestTileTable_InsertSQL(t *testing.T) {
	query := TileTable{Name: "tiles"}.insertSQL()
	assert.Equal(t, `INSERT INTO "tiles"(`+
		`"tile_id","col","row","xmin","ymin","xmax","ymax",`+
		`"tile_size","resolution","origin_x","origin_y","buffer_miles","geom") `+
		`VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`, query)
}

// The insert statement must bind one value per tile feature column plus the
// geometry.
func TestTileTable_InsertSQLMatchesTileFeature(t *testing.T) {
	feature := processing.TileFeature{}
	query := TileTable{Name: "tiles"}.insertSQL()
	assert.Equal(t, len(feature.Columns())+1, strings.Count(query, "?"))
}
