package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataentry/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{OptionsBackend: "sqlite"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		OptionsBackend:         "sheets",
		OptionsDir:             "seed",
		GoogleSpreadsheetID:    "sheet",
		GoogleOptionsSheetName: "Options",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, "seed", cfg.DataDirectory)
	assert.Equal(t, "sheet", cfg.GoogleSpreadsheetID)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: "nope"}.Validate())
	assert.Error(t, Config{Type: SheetsBackend}.Validate())
	assert.Error(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "x"}.Validate())
	assert.NoError(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "x", GoogleServiceAccountJSON: "{}"}.Validate())
}

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, res.Backend)
	assert.Nil(t, res.Cleanup)

	cats, subs, err := res.Backend.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Option 1", "Option 2"}, cats)
	assert.Equal(t, []string{"Option 1", "Option 2"}, subs)
}

func TestCreateSheetsBackendRequiresCredentials(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: SheetsBackend, GoogleSpreadsheetID: "x"})
	require.Error(t, err)
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("sqlite").IsValid())
}
