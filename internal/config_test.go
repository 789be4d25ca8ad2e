package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_LoadSettings(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		settings, err := LoadSettings("")
		require.NoError(t, err)
		require.Equal(t, DefaultSettings(), settings)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		settings, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		require.Equal(t, DefaultSettings(), settings)
	})

	t.Run("file overrides defaults selectively", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		err := os.WriteFile(path, []byte(`{
			"portfolio": {
				"topN": 5,
				"minScore": 40,
				"maxPositions": 20,
				"allowCrypto": false,
				"maxPositionWeight": 0.15,
				"minPositionWeight": 0.01
			},
			"regimeCacheMinutes": 5
		}`), 0644)
		require.NoError(t, err)

		settings, err := LoadSettings(path)
		require.NoError(t, err)
		require.Equal(t, 5, settings.Portfolio.TopN)
		require.Equal(t, 40.0, settings.Portfolio.MinScore)
		require.False(t, settings.Portfolio.AllowCrypto)
		require.Equal(t, 5, settings.RegimeCacheMinutes)
		// untouched sections keep their defaults
		require.Equal(t, DefaultRebalanceConfig(), settings.Rebalance)
	})

	t.Run("malformed json fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		_, err := LoadSettings(path)
		require.Error(t, err)
	})
}

func Test_DbSecretsToConnectionStr(t *testing.T) {
	secrets := DbSecrets{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		Database: "scanner",
	}
	require.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=scanner sslmode=disable",
		secrets.ToConnectionStr(),
	)

	secrets.EnableSsl = true
	require.NotContains(t, secrets.ToConnectionStr(), "sslmode=disable")
}
