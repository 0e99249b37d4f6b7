// Package srs holds the spatial reference systems a fishnet can be generated
// in. A set of definitions ships embedded so a run needs no registry access,
// extra systems can be loaded from a JSON file.
package srs

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom/encoding/gpkg"
	"github.com/perimeterx/marshmallow"
)

// Ids of the embedded definitions
const (
	USAContiguousAlbersUSGSFoot = "USAContiguousAlbersUSGSFoot"
	NetherlandsRDNew            = "NetherlandsRDNew"
	WebMercator                 = "WebMercator"
)

const metresPerMile = 1609.344

var (
	//go:embed definitions/*.json
	embeddedSRSJSONFS embed.FS
	embeddedSRSCache  = make(map[string]*SRS)
)

// SRS is one spatial reference system, described just deep enough to label a
// geopackage and to convert buffer distances into its linear unit. No
// reprojection happens here, coordinates are taken as already being in this
// system.
type SRS struct {
	// ID is the srs_id the output geopackage will carry for this system
	ID   int    `validate:"required" json:"id"`
	Name string `validate:"required" json:"name"`
	// Organization is the registry the code belongs to, e.g. EPSG,
	// or NONE for systems that are not registered anywhere
	Organization string `default:"EPSG" json:"organization"`
	// Code of this system within the organization registry
	Code int `validate:"required" json:"code"`
	// Definition is the well-known text of the system
	Definition  string `validate:"required" json:"-"`
	Description string `json:"description,omitempty"`
	// MetresPerUnit converts the linear unit of this system to metres
	MetresPerUnit float64 `default:"1" validate:"gt=0" json:"metresPerUnit"`
}

func (srs *SRS) UnmarshalJSON(data []byte) error {
	err := defaults.Set(srs)
	if err != nil {
		return err
	}

	specials, err := marshmallow.Unmarshal(data, srs, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}

	// Definition
	rawDefinition, ok := specials["definition"]
	if !ok {
		return fmt.Errorf(`missing key "definition"`)
	}
	srs.Definition, err = unmarshalDefinition(rawDefinition)
	if err != nil {
		return err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(srs)
}

// unmarshalDefinition accepts the well-known text either as one string or as
// an array of string segments that are concatenated verbatim. The array form
// keeps the long projected system definitions readable in the JSON files.
func unmarshalDefinition(rawDefinition interface{}) (string, error) {
	switch rawDef := rawDefinition.(type) {
	case string:
		return rawDef, nil
	case []interface{}:
		var definition strings.Builder
		for _, rawSegment := range rawDef {
			segment, ok := rawSegment.(string)
			if !ok {
				return "", fmt.Errorf(`"definition" segments should be strings, got a %T`, rawSegment)
			}
			definition.WriteString(segment)
		}
		return definition.String(), nil
	default:
		return "", fmt.Errorf(`wrong type for key "definition": %T`, rawDefinition)
	}
}

func LoadEmbeddedSRS(id string) (SRS, error) {
	var srs SRS
	cached, ok := embeddedSRSCache[id]
	if ok {
		return *cached, nil
	}
	srsJSON, err := embeddedSRSJSONFS.ReadFile("definitions/" + id + ".json")
	if err != nil {
		return srs, err
	}
	err = json.Unmarshal(srsJSON, &srs)
	if err != nil {
		return srs, err
	}
	embeddedSRSCache[id] = &srs
	return srs, nil
}

func LoadSRSFile(path string) (SRS, error) {
	var srs SRS
	srsJSON, err := os.ReadFile(path)
	if err != nil {
		return srs, err
	}
	err = json.Unmarshal(srsJSON, &srs)
	if err != nil {
		return srs, err
	}
	return srs, nil
}

// LoadSRS resolves idOrPath against the embedded definitions first and the
// filesystem second.
func LoadSRS(idOrPath string) (SRS, error) {
	srs, err := LoadEmbeddedSRS(idOrPath)
	if err == nil {
		return srs, nil
	}
	srs, fileErr := LoadSRSFile(idOrPath)
	if fileErr == nil {
		return srs, nil
	}
	return srs, fmt.Errorf("unknown srs %q, not one of the embedded definitions %v and not a readable definition file: %w",
		idOrPath, EmbeddedSRSIDs(), fileErr)
}

func EmbeddedSRSIDs() []string {
	entries, err := embeddedSRSJSONFS.ReadDir("definitions")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids
}

// MilesToUnits converts a distance in statute miles to the linear unit of
// this system.
func (srs *SRS) MilesToUnits(miles float64) float64 {
	return miles * metresPerMile / srs.MetresPerUnit
}

// AsGpkgSRS returns the system as a geopackage gpkg_spatial_ref_sys record.
func (srs *SRS) AsGpkgSRS() gpkg.SpatialReferenceSystem {
	return gpkg.SpatialReferenceSystem{
		Name:                   srs.Name,
		ID:                     srs.ID,
		Organization:           srs.Organization,
		OrganizationCoordsysID: srs.Code,
		Definition:             srs.Definition,
		Description:            srs.Description,
	}
}
