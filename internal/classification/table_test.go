package classification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/dimensions"
)

func TestNewTable(t *testing.T) {
	t.Run("rejects code in two chains", func(t *testing.T) {
		_, err := NewTable([]Chain{
			{Label: "Grãos", Codes: []string{"0119901"}},
			{Label: "Fruticultura", Codes: []string{"119901"}},
		}, Fallback{}, "v1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0119901")
	})

	t.Run("rejects repeated label", func(t *testing.T) {
		_, err := NewTable([]Chain{{Label: "Fumo"}, {Label: "Fumo"}}, Fallback{}, "v1")
		assert.Error(t, err)
	})

	t.Run("rejects fallback label as chain", func(t *testing.T) {
		_, err := NewTable([]Chain{{Label: Other}}, Fallback{}, "v1")
		assert.Error(t, err)
	})

	t.Run("rejects malformed code", func(t *testing.T) {
		_, err := NewTable([]Chain{{Label: "Fumo", Codes: []string{"01A4800"}}}, Fallback{}, "v1")
		assert.Error(t, err)
	})
}

func TestTableLookups(t *testing.T) {
	table, err := NewTable([]Chain{
		{Label: "Bovinocultura de Corte", Description: "Criação de bovinos para abate", Color: "#8B4513", Codes: []string{"0151201"}},
		{Label: "Sojicultura", Codes: []string{"115600"}},
	}, Fallback{}, "v1")
	require.NoError(t, err)

	tests := []struct {
		code string
		want string
	}{
		{"0151201", "Bovinocultura de Corte"},
		{"151201", "Bovinocultura de Corte"},
		{" 0115600 ", "Sojicultura"},
		{"115600.0", "Sojicultura"},
		{"9999999", Other},
		{"", Other},
		{"abc", Other},
		{"123456789", Other},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Classify(tt.code))
		})
	}

	assert.Equal(t, "Criação de bovinos para abate", table.Describe("Bovinocultura de Corte"))
	assert.Equal(t, DefaultDescription, table.Describe("Sojicultura"))
	assert.Equal(t, DefaultDescription, table.Describe(Other))
	assert.Equal(t, DefaultDescription, table.Describe("Retired Chain"))

	assert.Equal(t, "#8B4513", table.ColorOf("Bovinocultura de Corte"))
	assert.Equal(t, DefaultColor, table.ColorOf(Other))
	assert.Equal(t, DefaultColor, table.ColorOf("Retired Chain"))

	assert.Equal(t, []string{"Bovinocultura de Corte", "Sojicultura"}, table.Labels())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "v1", table.Version())
}

func TestTableResolve(t *testing.T) {
	table, err := NewTable([]Chain{{Label: "Sojicultura", Codes: []string{"0115600"}}}, Fallback{}, "v2")
	require.NoError(t, err)

	assert.Equal(t, "Sojicultura", table.Resolve("0115600", "Grãos"), "fresh label overrides persisted one")
	assert.Equal(t, "Grãos", table.Resolve("0111302", "Grãos"), "persisted label kept when table has no entry")
	assert.Equal(t, Other, table.Resolve("0111302", ""))
	assert.Equal(t, Other, table.Resolve("0111302", "  "))
}

func TestDefaultAsset(t *testing.T) {
	assets, err := Default()
	require.NoError(t, err)

	table := assets.Table
	assert.Equal(t, "Bovinocultura de Corte", table.Classify("0151201"))
	assert.Equal(t, "Bovinocultura de Leite", table.Classify("0151202"))
	assert.Equal(t, "Fruticultura", table.Classify("0119901"))
	assert.Equal(t, "Grãos", table.Classify("0119903"))
	assert.Equal(t, "Silvicultura", table.Classify("0210103"))
	assert.Equal(t, "Aquicultura", table.Classify("0322101"))
	assert.Equal(t, "Serviços Agrícolas", table.Classify("0163600"))
	assert.Equal(t, Other, table.Classify("0500301"))

	assert.Len(t, table.Labels(), 19)
	assert.Equal(t, "#228B22", table.ColorOf("Sojicultura"))
	assert.Equal(t, "Criação de suínos", table.Describe("Suinocultura"))
	assert.Len(t, table.Version(), 12)

	set := assets.Dimensions
	assert.Equal(t, "Masculino", set.Sex.Name("1"))
	assert.Equal(t, "Feminino", set.Sex.Name("3"))
	assert.Equal(t, "Médio Completo", set.Education.Name("7"))
	assert.Equal(t, "Pós-Graduação completa", set.Education.Name("80"))
	assert.Equal(t, "Parda", set.Race.Name("5"))
	assert.Equal(t, "Desligamento a pedido", set.MovementType.Name("72"))
	assert.Equal(t, "1000 ou mais", set.EmployerSize.Name("10"))
	assert.Equal(t, "Pesca e Aquicultura", set.Division.Name("03"))
	assert.Equal(t, dimensions.NotInformed, set.Sex.Name("2"))

	label, _ := set.Ages.Derive("65")
	assert.Equal(t, "65 anos ou mais", label)
}

func TestDefaultAssetEveryChainHasCodes(t *testing.T) {
	assets, err := Default()
	require.NoError(t, err)

	perChain := make(map[string]int)
	for _, chain := range assets.Table.codes {
		perChain[chain]++
	}
	for _, label := range assets.Table.Labels() {
		assert.NotZero(t, perChain[label], "chain %s has no codes", label)
	}
	assert.Equal(t, 112, assets.Table.Len())
}

func TestLoad(t *testing.T) {
	t.Run("empty path selects embedded asset", func(t *testing.T) {
		assets, err := Load("")
		require.NoError(t, err)
		assert.NotZero(t, assets.Table.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
	})

	t.Run("custom asset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chains.yaml")
		content := `
chains:
  - label: Erva-mate
    color: "#00AA00"
    codes: ["0139302"]
dimensions:
  sex:
    "1": Male
age_brackets:
  - min: 0
    max: 59
    label: Working age
  - min: 60
    label: Senior
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		assets, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Erva-mate", assets.Table.Classify("139302"))
		assert.Equal(t, DefaultDescription, assets.Table.Describe("Erva-mate"))
		assert.Equal(t, "Male", assets.Dimensions.Sex.Name("1"))
		label, _ := assets.Dimensions.Ages.Derive("61")
		assert.Equal(t, "Senior", label)
	})

	t.Run("duplicate code is a config error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chains.yaml")
		content := `
chains:
  - label: A
    codes: ["0139302"]
  - label: B
    codes: ["0139302"]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("unknown key is a config error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chains.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chainz: []\n"), 0o644))

		_, err := Load(path)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})
}
