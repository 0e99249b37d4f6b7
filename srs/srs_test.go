package srs

import (
	"encoding/json"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSRS(t *testing.T) {
	tests := []struct {
		id            string
		srsID         int
		organization  string
		code          int
		metresPerUnit float64
	}{
		{id: "USAContiguousAlbersUSGSFoot", srsID: 100000, organization: "NONE", code: 100000, metresPerUnit: 0.3048},
		{id: "NetherlandsRDNew", srsID: 28992, organization: "EPSG", code: 28992, metresPerUnit: 1},
		{id: "WebMercator", srsID: 3857, organization: "EPSG", code: 3857, metresPerUnit: 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := LoadEmbeddedSRS(tt.id)
			require.NoErrorf(t, err, "LoadEmbeddedSRS() error = %v", err)

			assert.Equal(t, tt.srsID, got.ID)
			assert.Equal(t, tt.organization, got.Organization)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.metresPerUnit, got.MetresPerUnit)
			assert.True(t, strings.HasPrefix(got.Definition, "PROJCS["), "definition should be well-known text")
			assert.NotContains(t, got.Definition, "\n")

			cached, err := LoadEmbeddedSRS(tt.id)
			require.NoError(t, err)
			assert.Equal(t, got, cached)
		})
	}
}

// The segments of an array form definition concatenate verbatim.
func TestLoadEmbeddedSRS_DefinitionSegments(t *testing.T) {
	got, err := LoadEmbeddedSRS(USAContiguousAlbersUSGSFoot)
	require.NoError(t, err)
	assert.Contains(t, got.Definition, `SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],`)
	assert.True(t, strings.HasSuffix(got.Definition, `UNIT["Foot",0.3048]]`))
}

func TestLoadEmbeddedSRS_Unknown(t *testing.T) {
	_, err := LoadEmbeddedSRS("MartianPolarGrid")
	require.Error(t, err)
}

func TestLoadSRSFile(t *testing.T) {
	jsonFilePath, err := filepath.Abs(path.Join("testdata", "LocalAlbersMetre.json"))
	require.NoError(t, err)
	got, err := LoadSRSFile(jsonFilePath)
	require.NoErrorf(t, err, "LoadSRSFile() error = %v", err)

	assert.Equal(t, 100010, got.ID)
	assert.Equal(t, "NONE", got.Organization)
	// omitted in the file, filled by defaults
	assert.Equal(t, 1.0, got.MetresPerUnit)
}

func TestLoadSRS(t *testing.T) {
	tests := []struct {
		name     string
		idOrPath string
		srsID    int
		wantErr  bool
	}{
		{name: "embedded id", idOrPath: WebMercator, srsID: 3857},
		{name: "definition file", idOrPath: "testdata/LocalAlbersMetre.json", srsID: 100010},
		{name: "neither", idOrPath: "NoSuchSystem", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadSRS(tt.idOrPath)
			if tt.wantErr {
				require.ErrorContains(t, err, "not one of the embedded definitions")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.srsID, got.ID)
		})
	}
}

func TestSRS_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		rawJSON string
		wantErr string
	}{
		{name: "missing definition",
			rawJSON: `{"id": 1, "name": "x", "code": 1}`,
			wantErr: `missing key "definition"`},
		{name: "definition segments not strings",
			rawJSON: `{"id": 1, "name": "x", "code": 1, "definition": [42]}`,
			wantErr: `"definition" segments should be strings`},
		{name: "definition wrong type",
			rawJSON: `{"id": 1, "name": "x", "code": 1, "definition": {"uri": "x"}}`,
			wantErr: `wrong type for key "definition"`},
		{name: "missing id",
			rawJSON: `{"name": "x", "code": 1, "definition": "PROJCS[]"}`,
			wantErr: "required"},
		{name: "negative metres per unit",
			rawJSON: `{"id": 1, "name": "x", "code": 1, "definition": "PROJCS[]", "metresPerUnit": -1}`,
			wantErr: "gt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var srs SRS
			err := json.Unmarshal([]byte(tt.rawJSON), &srs)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEmbeddedSRSIDs(t *testing.T) {
	assert.Equal(t, []string{NetherlandsRDNew, USAContiguousAlbersUSGSFoot, WebMercator}, EmbeddedSRSIDs())
}

func TestSRS_MilesToUnits(t *testing.T) {
	foot, err := LoadEmbeddedSRS(USAContiguousAlbersUSGSFoot)
	require.NoError(t, err)
	assert.InDelta(t, 52800, foot.MilesToUnits(10), 1e-9)

	metre, err := LoadEmbeddedSRS(WebMercator)
	require.NoError(t, err)
	assert.InDelta(t, 16093.44, metre.MilesToUnits(10), 1e-9)
}

func TestSRS_AsGpkgSRS(t *testing.T) {
	srs := SRS{
		ID:            100000,
		Name:          "some system",
		Organization:  "NONE",
		Code:          100000,
		Definition:    "PROJCS[]",
		Description:   "a description",
		MetresPerUnit: 0.3048,
	}
	gpkgSRS := srs.AsGpkgSRS()
	assert.Equal(t, srs.Name, gpkgSRS.Name)
	assert.Equal(t, srs.ID, gpkgSRS.ID)
	assert.Equal(t, srs.Organization, gpkgSRS.Organization)
	assert.Equal(t, srs.Code, gpkgSRS.OrganizationCoordsysID)
	assert.Equal(t, srs.Definition, gpkgSRS.Definition)
	assert.Equal(t, srs.Description, gpkgSRS.Description)
}
