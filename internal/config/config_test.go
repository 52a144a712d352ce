package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			file: "pipeline:\n  input_path: data/raw.csv\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "data/raw.csv", cfg.Pipeline.InputPath)
				assert.Equal(t, DefaultOutputDir, cfg.Pipeline.OutputDir)
				assert.Equal(t, []string{"01", "02", "03"}, cfg.Pipeline.Divisions)
				assert.Equal(t, 20, cfg.Pipeline.TopMunicipalities)
				assert.Equal(t, []string{FormatJSON}, cfg.Pipeline.Formats)
				assert.True(t, cfg.Pipeline.SourceIsOfficial)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "file values override defaults",
			file: `
pipeline:
  output_dir: /srv/dashboard
  formats: [json, CSV, xlsx]
  top_municipalities: 10
  source_is_official: false
server:
  port: 9090
  read_timeout: 5s
logging:
  level: debug
  format: text
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/srv/dashboard", cfg.Pipeline.OutputDir)
				assert.Equal(t, []string{"json", "csv", "xlsx"}, cfg.Pipeline.Formats)
				assert.Equal(t, 10, cfg.Pipeline.TopMunicipalities)
				assert.False(t, cfg.Pipeline.SourceIsOfficial)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9090\npipeline:\n  workers: 2\n",
			env: map[string]string{
				"AGRO_SERVER_PORT":      "7070",
				"AGRO_PIPELINE_FORMATS": "json,xlsx",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 2, cfg.Pipeline.Workers)
				assert.Equal(t, []string{"json", "xlsx"}, cfg.Pipeline.Formats)
			},
		},
		{
			name:    "unsupported format",
			file:    "pipeline:\n  formats: [parquet]\n",
			wantErr: "unsupported output format",
		},
		{
			name:    "publish without bucket",
			file:    "publish:\n  enabled: true\n",
			wantErr: "publish bucket",
		},
		{
			name:    "bad division",
			file:    "pipeline:\n  divisions: ['1']\n",
			wantErr: "two digits",
		},
		{
			name:    "invalid yaml",
			file:    "pipeline: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfigFile(t, tt.file)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Pipeline.HasFormat(FormatJSON))
	assert.False(t, cfg.Pipeline.HasFormat(FormatXLSX))
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "both"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
	assert.Equal(t, "logs/"+AppName+".log", cfg.Logging.FilePath)
}
