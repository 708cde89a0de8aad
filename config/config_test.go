package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithEnvFile("", "")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.NumImages)
	assert.Equal(t, 0.7, cfg.TrainRatio)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "extended", cfg.Profile)
}

func TestLoadPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		env       map[string]string
		envFile   string
		wantNum   int
		wantRatio float64
		wantOut   string
	}{
		{
			name:      "yaml_overrides_defaults",
			yaml:      "numImages: 50\ntrainRatio: 0.8\noutputDir: out\n",
			wantNum:   50,
			wantRatio: 0.8,
			wantOut:   "out",
		},
		{
			name:      "env_overrides_yaml",
			yaml:      "numImages: 50\noutputDir: out\n",
			env:       map[string]string{"SYNTH_NUM_IMAGES": "7", "SYNTH_OUTPUT_DIR": "elsewhere"},
			wantNum:   7,
			wantRatio: 0.7,
			wantOut:   "elsewhere",
		},
		{
			name:      "dotenv_file",
			envFile:   "SYNTH_TRAIN_RATIO=0.5\n",
			wantNum:   10,
			wantRatio: 0.5,
			wantOut:   ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "synth.yaml", tt.yaml)
			}
			envFile := ""
			if tt.envFile != "" {
				envFile = writeFile(t, ".env", tt.envFile)
				// godotenv sets real process variables
				t.Cleanup(func() { os.Unsetenv("SYNTH_TRAIN_RATIO") })
			}

			cfg, err := LoadWithEnvFile(path, envFile)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNum, cfg.NumImages)
			assert.Equal(t, tt.wantRatio, cfg.TrainRatio)
			assert.Equal(t, tt.wantOut, cfg.OutputDir)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "numImages: [1, 2\n")
	_, err = LoadWithEnvFile(bad, "")
	assert.Error(t, err)

	ratio := writeFile(t, "ratio.yaml", "trainRatio: 1.5\n")
	_, err = LoadWithEnvFile(ratio, "")
	assert.Error(t, err)

	t.Setenv("SYNTH_WORKERS", "many")
	_, err = LoadWithEnvFile("", "")
	assert.Error(t, err)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadWithEnvFile("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}
