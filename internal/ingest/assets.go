package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "agrocaged/internal/errors"
)

// municipalityCodeWidth is the width of the municipality codes used by the microdata;
// IBGE geometries carry a seventh check digit.
const municipalityCodeWidth = 6

type featureCollection struct {
	Features []struct {
		Properties struct {
			Code json.Number `json:"CodIbge"`
			Name string      `json:"Municipio"`
		} `json:"properties"`
	} `json:"features"`
}

// LoadMunicipalityNames reads a GeoJSON feature collection and maps six digit
// municipality codes to names. An empty path yields an empty map.
func LoadMunicipalityNames(path string) (map[string]string, error) {
	names := make(map[string]string)
	if path == "" {
		return names, nil
	}

	data, err := readAsset(path, "municipality names")
	if err != nil {
		return nil, err
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("decode geojson %s", path), err)
	}

	for _, f := range fc.Features {
		code := strings.TrimSpace(f.Properties.Code.String())
		if code == "" || f.Properties.Name == "" {
			continue
		}
		if len(code) > municipalityCodeWidth {
			code = code[:municipalityCodeWidth]
		}
		names[code] = f.Properties.Name
	}
	return names, nil
}

// LoadSubclassDescriptions reads a JSON object of CNAE subclass code to description.
// Keys are zero-padded like subclass codes. An empty path yields an empty map.
func LoadSubclassDescriptions(path string) (map[string]string, error) {
	descriptions := make(map[string]string)
	if path == "" {
		return descriptions, nil
	}

	data, err := readAsset(path, "subclass descriptions")
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("decode subclass descriptions %s", path), err)
	}
	for code, desc := range raw {
		code = strings.TrimSpace(code)
		if len(code) < 7 {
			code = strings.Repeat("0", 7-len(code)) + code
		}
		descriptions[code] = desc
	}
	return descriptions, nil
}

func readAsset(path, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingInputError(what, path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", path), err)
	}
	return data, nil
}
