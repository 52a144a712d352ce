package classification

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/dimensions"
)

//go:embed assets/cadeias.yaml
var defaultAsset []byte

// document is the on-disk layout of a classification asset
type document struct {
	Fallback    Fallback                `yaml:"fallback"`
	Chains      []Chain                 `yaml:"chains"`
	Dimensions  dimensions.Enumerations `yaml:"dimensions"`
	AgeBrackets []dimensions.Bracket    `yaml:"age_brackets"`
}

// Assets are the lookup tables a run needs, loaded once and passed explicitly
type Assets struct {
	Table      *Table
	Dimensions *dimensions.Set
}

// Parse builds Assets from YAML. The table version is a hash of data.
func Parse(data []byte) (*Assets, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, apperrors.NewConfigError("invalid classification asset", err)
	}
	if len(doc.Chains) == 0 {
		return nil, apperrors.NewConfigError("classification asset declares no chains", nil)
	}

	sum := sha256.Sum256(data)
	table, err := NewTable(doc.Chains, doc.Fallback, hex.EncodeToString(sum[:])[:12])
	if err != nil {
		return nil, apperrors.NewConfigError("invalid classification asset", err)
	}

	set, err := dimensions.NewSet(doc.Dimensions, doc.AgeBrackets)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid dimension tables", err)
	}

	return &Assets{Table: table, Dimensions: set}, nil
}

// Load reads an asset file. An empty path selects the embedded default asset.
func Load(path string) (*Assets, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingInputError("classification asset", path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("read classification asset %s", path), err)
	}

	assets, err := Parse(data)
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return assets, nil
}

// Default returns the embedded agricultural chain asset
func Default() (*Assets, error) {
	return Parse(defaultAsset)
}
