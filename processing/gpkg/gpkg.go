// Package gpkg reads boundary geometries from and writes tile tables to
// geopackages.
package gpkg

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"

	"github.com/pdok/fishnet/processing"
)

type column struct {
	name    string
	ctype   string
	notnull bool
	pk      bool
	unique  bool
}

// tileColumns is the fixed layout of a tile table, the geometry column
// excluded. The order after the primary key is the order a tile Feature's
// Columns() follows.
var tileColumns = []column{
	{name: "fid", ctype: "INTEGER", pk: true},
	{name: "tile_id", ctype: "TEXT", notnull: true, unique: true},
	{name: "col", ctype: "INTEGER", notnull: true},
	{name: "row", ctype: "INTEGER", notnull: true},
	{name: "xmin", ctype: "REAL", notnull: true},
	{name: "ymin", ctype: "REAL", notnull: true},
	{name: "xmax", ctype: "REAL", notnull: true},
	{name: "ymax", ctype: "REAL", notnull: true},
	{name: "tile_size", ctype: "REAL", notnull: true},
	{name: "resolution", ctype: "REAL", notnull: true},
	{name: "origin_x", ctype: "REAL", notnull: true},
	{name: "origin_y", ctype: "REAL", notnull: true},
	{name: "buffer_miles", ctype: "REAL", notnull: true},
}

const geometryColumn = "geom"

// BoundaryTable is one geometry table in a source geopackage.
type BoundaryTable struct {
	Name    string
	SRSID   int
	gcolumn string
	gtype   string
}

type SourceGeopackage struct {
	handle *gpkg.Handle
}

func (source *SourceGeopackage) Init(file string) {
	source.handle = openGeopackage(file)
}

func (source SourceGeopackage) Close() {
	source.handle.Close()
}

// BoundaryTables lists the geometry tables of the source geopackage.
func (source SourceGeopackage) BoundaryTables() []BoundaryTable {
	query := `SELECT table_name, column_name, geometry_type_name, srs_id FROM gpkg_geometry_columns;`
	rows, err := source.handle.Query(query)
	if err != nil {
		log.Fatalf("error reading the geometry tables: %v - %v", query, err)
	}
	var tables []BoundaryTable

	for rows.Next() {
		var t BoundaryTable
		err := rows.Scan(&t.Name, &t.gcolumn, &t.gtype, &t.SRSID)
		if err != nil {
			log.Fatalf("error reading the source table information: %s", err)
		}
		tables = append(tables, t)
	}
	defer rows.Close()
	return tables
}

// ReadPolygons reads every geometry from the given table and decodes it to
// polygons, exploding multipolygons into their members.
func (source SourceGeopackage) ReadPolygons(table BoundaryTable) []geom.Polygon {
	query := `SELECT "` + table.gcolumn + `" FROM "` + table.Name + `";`
	rows, err := source.handle.Query(query)
	if err != nil {
		log.Fatalf("error reading the boundary table %q: %s", table.Name, err)
	}

	var polygons []geom.Polygon
	for rows.Next() {
		var data []byte
		if err = rows.Scan(&data); err != nil {
			log.Fatalf("error reading a boundary row: %v", err)
		}
		sb, err := gpkg.DecodeGeometry(data)
		if err != nil {
			log.Fatalf("error decoding a boundary geometry: %s", err)
		}
		switch geometry := sb.Geometry.(type) {
		case geom.Polygon:
			polygons = append(polygons, geometry)
		case geom.MultiPolygon:
			for _, polygon := range geometry {
				polygons = append(polygons, polygon)
			}
		default:
			log.Fatalf("boundary geometries must be polygons, table %q holds a %T", table.Name, geometry)
		}
	}
	err = rows.Err()
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()
	return polygons
}

type TileTable struct {
	Name string
	srs  gpkg.SpatialReferenceSystem
}

type TargetGeopackage struct {
	Table    TileTable
	pagesize int
	handle   *gpkg.Handle
	ext      *geom.Extent
}

func (target *TargetGeopackage) Init(file string, pagesize int) {
	target.pagesize = pagesize
	target.handle = openGeopackage(file)
}

func (target *TargetGeopackage) Close() {
	target.handle.Close()
}

// CreateTileTable registers the spatial reference system and creates the
// fixed layout tile table.
func (target *TargetGeopackage) CreateTileTable(name string, srs gpkg.SpatialReferenceSystem) error {
	target.Table = TileTable{Name: name, srs: srs}
	err := target.handle.UpdateSRS(srs)
	if err != nil {
		return err
	}
	return buildTable(target.handle, target.Table)
}

func (target *TargetGeopackage) WriteFeatures(features <-chan processing.Feature) {
	var page []processing.Feature

	for {
		feature, hasMore := <-features
		if !hasMore {
			target.writePage(page)
			break
		}
		page = append(page, feature)

		if len(page) == target.pagesize {
			target.writePage(page)
			page = nil
		}
	}
}

func (target *TargetGeopackage) writePage(features []processing.Feature) {
	if len(features) == 0 {
		return
	}
	tx, err := target.handle.Begin()
	if err != nil {
		log.Fatalf("Could not start a transaction: %s", err)
	}

	stmt, err := tx.Prepare(target.Table.insertSQL())
	if err != nil {
		log.Fatalf("Could not prepare a statement: %s", err)
	}

	for _, feature := range features {
		sb, err := gpkg.NewBinary(int32(target.Table.srs.ID), feature.Geometry())
		if err != nil {
			log.Fatalf("Could not create a binary geometry: %s", err)
		}

		data := feature.Columns()
		data = append(data, sb)

		_, err = stmt.Exec(data...)
		if err != nil {
			log.Fatalf("Could not write tile %v: %s", data[0], err)
		}

		if target.ext == nil {
			target.ext, err = geom.NewExtentFromGeometry(feature.Geometry())
			if err != nil {
				target.ext = nil
				log.Println("Failed to create new extent:", err)
				continue
			}
		} else if err = target.ext.AddGeometry(feature.Geometry()); err != nil {
			log.Println("Failed to grow the extent:", err)
		}
	}
	stmt.Close()
	tx.Commit()

	err = target.handle.UpdateGeometryExtent(target.Table.Name, target.ext)
	if err != nil {
		log.Fatalln("Failed to update the geometry extent:", err)
	}
}

func openGeopackage(file string) *gpkg.Handle {
	handle, err := gpkg.Open(file)
	if err != nil {
		log.Fatalf("error opening GeoPackage: %s", err)
	}
	return handle
}

// createSQL creates a CREATE statement for a tile table
func (t TileTable) createSQL() string {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%v"`, t.Name)
	var columnparts []string
	for _, column := range tileColumns {
		columnpart := `"` + column.name + `" ` + column.ctype
		if column.notnull {
			columnpart = columnpart + ` NOT NULL`
		}
		if column.unique {
			columnpart = columnpart + ` UNIQUE`
		}
		if column.pk {
			columnpart = columnpart + ` PRIMARY KEY AUTOINCREMENT`
		}

		columnparts = append(columnparts, columnpart)
	}
	columnparts = append(columnparts, `"`+geometryColumn+`" POLYGON`)

	query := create + `(` + strings.Join(columnparts, `, `) + `);`
	return query
}

// insertSQL builds the INSERT statement for a tile table, every column
// except the primary key, the geometry last
func (t TileTable) insertSQL() string {
	var csql, vsql []string
	for _, c := range tileColumns {
		if c.pk {
			continue
		}
		csql = append(csql, `"`+c.name+`"`)
		vsql = append(vsql, `?`)
	}
	csql = append(csql, `"`+geometryColumn+`"`)
	vsql = append(vsql, `?`)
	query := `INSERT INTO "` + t.Name + `"(` + strings.Join(csql, `,`) + `) VALUES(` + strings.Join(vsql, `,`) + `)`
	return query
}

// buildTable creates the tile table with the necessary gpkg_ information
func buildTable(h *gpkg.Handle, t TileTable) error {
	query := t.createSQL()
	_, err := h.Exec(query)
	if err != nil {
		log.Fatalf("error building tile table in target GeoPackage: %s", err)
	}

	err = h.AddGeometryTable(gpkg.TableDescription{
		Name:          t.Name,
		ShortName:     t.Name,
		Description:   t.Name,
		GeometryField: geometryColumn,
		GeometryType:  gpkg.Polygon,
		SRS:           int32(t.srs.ID),
		//
		Z: gpkg.Prohibited,
		M: gpkg.Prohibited,
	})
	if err != nil {
		log.Println("error adding geometry table in target GeoPackage:", err)
		return err
	}
	return nil
}
